package stream

import "encoding/json"

// doneSentinel is the data payload that ends a chat-completion stream.
const doneSentinel = "[DONE]"

// Chunk represents one decoded event payload from the chat-completion stream.
// Choices is nil when the member is absent or null, and empty for "choices": [].
type Chunk struct {
	Choices []Choice   `json:"choices"`
	Error   *errorBody `json:"error"`
}

// Choice is one entry of a chunk's choices. Delta is nil when the member is missing.
type Choice struct {
	Delta *Delta `json:"delta"`
}

// Delta carries the incremental content of a choice.
type Delta struct {
	Content string `json:"content"`
}

// errorBody is the provider's error object. Param and Code are not always strings on the wire.
type errorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   any    `json:"param"`
	Code    any    `json:"code"`
}

// errorEnvelope wraps errorBody the way non-200 responses carry it.
type errorEnvelope struct {
	Error *errorBody `json:"error"`
}

func (b *errorBody) apiError(status int) *APIError {
	return &APIError{
		StatusCode: status,
		Message:    b.Message,
		Type:       b.Type,
		Param:      stringify(b.Param),
		Code:       stringify(b.Code),
	}
}

// stringify renders a loosely typed JSON value, mapping null to "".
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}
