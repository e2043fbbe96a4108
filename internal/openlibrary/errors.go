package openlibrary

import (
	"errors"
	"fmt"
)

// ErrRequestFailed matches every RequestError via errors.Is
var ErrRequestFailed = errors.New("open library request failed")

// RequestError describes a failed search request.
// StatusCode is 0 when no HTTP response was received.
type RequestError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("request %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("request %s: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func (e *RequestError) Is(target error) bool {
	return target == ErrRequestFailed
}
