package render

import "context"

// Renderer turns a title and cleaned-up body text into a stored document
// and returns its path. Body paragraphs are separated by blank lines.
type Renderer interface {
	Render(ctx context.Context, title, text string) (string, error)
}
