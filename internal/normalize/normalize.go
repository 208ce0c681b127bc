package normalize

import "context"

// Normalizer cleans up raw transcription output: recognition mistakes,
// punctuation, and paragraph segmentation. It must not invent content
// beyond those corrections.
type Normalizer interface {
	Normalize(ctx context.Context, raw string) (string, error)
}
