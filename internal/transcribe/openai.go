package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"voicedoc/internal/config"
	"voicedoc/internal/storage"
)

// openAITranscriber implements Transcriber via the OpenAI Whisper
// audio transcriptions endpoint. Audio bytes are read through the storage
// adapter, so the backend (local disk or object storage) is transparent.
type openAITranscriber struct {
	apiKey  string
	baseURL string
	model   string
	store   storage.Storage
	client  *http.Client
}

// NewOpenAI creates a Whisper-backed Transcriber.
func NewOpenAI(cfg config.OpenAIConfig, store storage.Storage) Transcriber {
	return &openAITranscriber{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.WhisperModel,
		store:   store,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
	}
}

func (t *openAITranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if strings.TrimSpace(t.apiKey) == "" {
		return "", errors.New("openai api key is not configured")
	}

	f, err := t.store.Open(ctx, audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if err := mw.WriteField("model", t.model); err != nil {
		return "", fmt.Errorf("write model field: %w", err)
	}
	if err := mw.WriteField("response_format", "text"); err != nil {
		return "", fmt.Errorf("write response_format field: %w", err)
	}
	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", fmt.Errorf("create multipart file: %w", err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return "", fmt.Errorf("copy audio data: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	url := t.baseURL + "/v1/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("create transcription request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read transcription response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("transcription api error: status %d body %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	// response_format=text returns the transcript as a plain text body.
	return strings.TrimSpace(string(raw)), nil
}
