package api

import "fmt"

// StatusError is returned when the upstream API rejects a request.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Code, e.Message)
}

// NotFound reports whether the upstream replied 404.
func (e *StatusError) NotFound() bool {
	return e.Code == 404
}
