package normalize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"voicedoc/internal/config"
)

// editorPrompt constrains the model to editing only: fix words the speech
// recognizer got wrong, punctuate, and break the text into paragraphs,
// keeping the speaker's meaning and style and adding nothing.
const editorPrompt = `You are a professional text editor. Your task:

1. Fix words that were misrecognized by speech-to-text, judging by context
2. Add correct punctuation
3. Split the text into logical paragraphs
4. Preserve the original meaning and speaking style
5. Do NOT add anything of your own, only edit the existing text

Return only the edited text with no commentary.`

// openAINormalizer implements Normalizer via the OpenAI chat completions
// endpoint.
type openAINormalizer struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewOpenAI creates a GPT-backed Normalizer.
func NewOpenAI(cfg config.OpenAIConfig) Normalizer {
	return &openAINormalizer{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.GPTModel,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_completion_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (n *openAINormalizer) Normalize(ctx context.Context, raw string) (string, error) {
	if strings.TrimSpace(n.apiKey) == "" {
		return "", errors.New("openai api key is not configured")
	}

	payload := chatRequest{
		Model: n.model,
		Messages: []chatMessage{
			{Role: "system", Content: editorPrompt},
			{Role: "user", Content: "Edit the following text:\n\n" + raw},
		},
		Temperature: 0.3,
		MaxTokens:   4096,
	}

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return "", fmt.Errorf("encode chat payload: %w", err)
	}

	url := n.baseURL + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat api error: status %d body %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("no completion returned")
	}

	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
