package stream

import (
	"strings"
	"testing"
)

func TestParseErrorBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want *APIError
	}{
		{
			name: "invalid key",
			body: `{"error":{"message":"bad key","type":"invalid_request_error","param":null,"code":"invalid_api_key"}}`,
			want: &APIError{StatusCode: 401, Message: "bad key", Type: "invalid_request_error", Code: "invalid_api_key"},
		},
		{
			name: "numeric code and param",
			body: `{"error":{"message":"m","type":"t","param":"messages","code":429}}`,
			want: &APIError{StatusCode: 401, Message: "m", Type: "t", Param: "messages", Code: "429"},
		},
		{name: "not json", body: `<html>bad gateway</html>`},
		{name: "no error member", body: `{"detail":"nope"}`},
		{name: "null error", body: `{"error":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseErrorBody(401, []byte(tt.body))
			if tt.want == nil {
				if ok {
					t.Fatalf("got %+v, want no match", got)
				}
				return
			}
			if !ok || *got != *tt.want {
				t.Fatalf("got %+v (ok=%v), want %+v", got, ok, tt.want)
			}
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	err := &APIError{StatusCode: 401, Message: "bad key", Type: "invalid_request_error", Code: "invalid_api_key"}
	msg := err.Error()
	for _, want := range []string{"401", "bad key", "invalid_request_error", "invalid_api_key"} {
		if !strings.Contains(msg, want) {
			t.Errorf("%q does not mention %q", msg, want)
		}
	}
}

func TestDecodeError_TruncatesPayload(t *testing.T) {
	err := &DecodeError{Payload: strings.Repeat("x", 1000)}
	if len(err.Error()) > 400 {
		t.Fatalf("message too long: %d bytes", len(err.Error()))
	}
}

func TestDecodeError_TruncatesOnRuneBoundary(t *testing.T) {
	// "é" is two bytes, so byte 256 falls inside a rune.
	err := &DecodeError{Payload: "x" + strings.Repeat("é", 300)}
	msg := err.Error()
	if strings.Contains(msg, `\x`) || !strings.Contains(msg, "é...") {
		t.Fatalf("message=%q", msg)
	}
}
