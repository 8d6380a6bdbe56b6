package api

import "fmt"

// RequestError is a non-2xx response from the backend. Message carries the
// user-facing text extracted from the response body when one was present.
type RequestError struct {
	Status  int
	Code    string
	Message string
}

func (e *RequestError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// Unauthorized reports whether the backend rejected the session token.
func (e *RequestError) Unauthorized() bool {
	return e != nil && e.Status == 401
}
