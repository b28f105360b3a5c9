// Package completion abstracts the chat completion backend that performs
// the actual text transformation.
package completion

import "context"

// Service produces a completion for a fully composed prompt.
type Service interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
