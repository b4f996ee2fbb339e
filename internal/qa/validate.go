package qa

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ValidationError describes why an inbound question payload was rejected.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Validation failures. Compare with errors.Is.
var (
	ErrMissingBody   = &ValidationError{Reason: "missing body"}
	ErrMissingField  = &ValidationError{Reason: "missing field"}
	ErrEmptyQuestion = &ValidationError{Reason: "empty question"}
	// ErrBodyTooLarge is returned by the HTTP layer before Validate runs.
	ErrBodyTooLarge = &ValidationError{Reason: "body too large"}
)

// Validate checks a raw JSON request body for a usable "question" field
// and returns it with surrounding whitespace removed.
func Validate(body []byte) (string, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return "", ErrMissingBody
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return "", ErrMissingBody
	}

	raw, ok := payload["question"]
	if !ok {
		return "", ErrMissingField
	}

	question, ok := raw.(string)
	if !ok {
		return "", ErrEmptyQuestion
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}
	return question, nil
}
