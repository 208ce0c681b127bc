package transcribe

import "context"

// Transcriber converts a stored audio file into raw text.
// Implementations call out to an external speech-to-text service; this
// package does not do any speech recognition itself.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}
