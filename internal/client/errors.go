package client

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyBody is returned when a successful response carries no body to stream.
var ErrEmptyBody = errors.New("response body is empty")

// HTTPError is a non-200 response whose body is not a provider error object.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *HTTPError) Error() string {
	detail := strings.TrimSpace(string(e.Body))
	if detail == "" {
		detail = e.Status
	}
	return fmt.Sprintf("OpenAI API returned an error: %s", detail)
}
