package llm

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when the upstream answers successfully but
// the body carries no choices.
var ErrEmptyResponse = errors.New("upstream response contained no choices")

// StatusError reports a non-success HTTP status returned by the upstream API.
type StatusError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error { return e.Err }

// StatusCode extracts the upstream HTTP status from err. The boolean is
// false when err did not come from an HTTP response (timeouts, refused
// connections, undecodable bodies).
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}
	return 0, false
}
