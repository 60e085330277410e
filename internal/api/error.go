package api

import "fmt"

// Error is a failed API call: either a non-2xx status or a payload the
// client could not decode. Only the human readable message matters to
// callers; they never branch on the fields.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("api: request failed with status %d", e.StatusCode)
}
