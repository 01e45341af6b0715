// Package llm is the completion service boundary: a prompt goes in, a value
// of the expected structured shape comes out.
package llm

import (
	"context"
	"encoding/json"
	"strings"

	"news-analysis/agent"
	"news-analysis/apperrors"
)

// Completer submits a prompt and decodes the structured response into out,
// which must be a pointer to one of the response shapes.
type Completer interface {
	Complete(ctx context.Context, prompt agent.Prompt, out any) error
}

// Validator is implemented by response shapes with constraints beyond JSON decoding.
type Validator interface {
	Validate() error
}

// Submit is a typed wrapper around Completer.Complete.
func Submit[T any](ctx context.Context, c Completer, prompt agent.Prompt) (T, error) {
	var out T
	if err := c.Complete(ctx, prompt, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Decode parses raw JSON into out and runs its validation.
func Decode(raw string, out any) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return apperrors.Wrap(apperrors.ErrMalformedResponse, "empty completion")
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return apperrors.Wrapf(apperrors.ErrMalformedResponse, "decode completion: %v", err)
	}

	if v, ok := out.(Validator); ok {
		if err := v.Validate(); err != nil {
			return apperrors.Wrapf(apperrors.ErrMalformedResponse, "validate completion: %v", err)
		}
	}
	return nil
}
