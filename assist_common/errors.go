package assist_common

import (
	"errors"
	"fmt"
)

// ErrAuthExpired is the distinguished "authentication expired" condition
// raised on HTTP 401. It is never retried and never cached; subscribers of
// the auth-expired topic are notified so the UI can re-authenticate.
var ErrAuthExpired = errors.New("authentication expired")

// APIError carries the server-supplied message of a non-2xx response
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}
