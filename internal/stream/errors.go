package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrCancelled is returned once the caller's context has been cancelled.
	ErrCancelled = errors.New("stream cancelled")
	// ErrTruncated is returned when the body ends before the [DONE] event.
	ErrTruncated = errors.New("stream ended before [DONE]")
	// ErrClosed is returned by reads after Close.
	ErrClosed = errors.New("stream closed")
)

// maxPayloadInError bounds how much of a bad payload is echoed into an error message.
const maxPayloadInError = 256

// DecodeError reports an event payload that could not be parsed.
type DecodeError struct {
	Payload string
	Err     error
}

func (e *DecodeError) Error() string {
	payload := e.Payload
	if len(payload) > maxPayloadInError {
		cut := maxPayloadInError
		for cut > 0 && !utf8.RuneStart(payload[cut]) {
			cut--
		}
		payload = payload[:cut] + "..."
	}
	return fmt.Sprintf("failed to decode stream payload %q: %v", payload, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// APIError is a structured error returned by the provider, either as a non-200
// response body or as an error event inside the stream. StatusCode is 0 for
// in-stream errors.
type APIError struct {
	StatusCode int
	Message    string
	Type       string
	Param      string
	Code       string
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString("openai")
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": http %d", e.StatusCode)
	}
	if e.Type != "" {
		b.WriteString(": ")
		b.WriteString(e.Type)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Code != "" {
		b.WriteString(" (")
		b.WriteString(e.Code)
		b.WriteString(")")
	}
	if e.Param != "" {
		b.WriteString(" param=")
		b.WriteString(e.Param)
	}
	return b.String()
}

// ParseErrorBody extracts the provider error object from a response body. It
// reports false when the body is not a JSON object with an "error" member.
func ParseErrorBody(status int, raw []byte) (*APIError, bool) {
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Error == nil {
		return nil, false
	}
	return env.Error.apiError(status), true
}

// IsCancelled reports whether err stems from a user-initiated cancellation
// rather than a failure worth reporting.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// cancelled maps a done context's error onto the stream taxonomy.
func cancelled(ctxErr error) error {
	if errors.Is(ctxErr, context.DeadlineExceeded) {
		return fmt.Errorf("stream timed out: %w", ctxErr)
	}
	return fmt.Errorf("%w: %w", ErrCancelled, ctxErr)
}
