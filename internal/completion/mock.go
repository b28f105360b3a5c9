package completion

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Mock is an offline completion backend for local development and demos.
// It recognizes the source and target forms embedded in the prompt and
// returns a deterministic transformation marker.
type Mock struct{}

// NewMock creates the offline backend.
func NewMock() *Mock { return &Mock{} }

var promptFormsRe = regexp.MustCompile(`(?s)from\s+"([^"]+)"\s+.*?to\s+"([^"]+)"`)

// Complete fabricates a transformed text without calling any API.
func (m *Mock) Complete(_ context.Context, prompt string) (string, error) {
	source, target := "unknown", "unknown"
	if match := promptFormsRe.FindStringSubmatch(prompt); match != nil {
		source, target = match[1], match[2]
	}

	text := prompt
	if i := strings.LastIndex(prompt, ":"); i >= 0 {
		text = strings.TrimSpace(prompt[i+1:])
	}

	return fmt.Sprintf("[%s] %s [transformed from %s]",
		strings.ToUpper(target), text, source), nil
}

var _ Service = (*Mock)(nil)
