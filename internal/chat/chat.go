// Package chat holds the conversation types and the loop that folds a streamed
// reply into a finished turn.
package chat

import "context"

// Speaker identifies who produced a turn.
type Speaker int

const (
	Human Speaker = iota
	Agent
)

func (s Speaker) String() string {
	if s == Agent {
		return "agent"
	}
	return "human"
}

// Turn is one message in a conversation.
type Turn struct {
	Text    string
	Speaker Speaker
}

// Params carries the per-request model settings. Credentials arrive already
// resolved; nothing here falls back to the environment.
type Params struct {
	Model        string
	APIKey       string
	Organization string
	Temperature  float64
	MaxTokens    int
}

// Stream yields the content fragments of one reply. Next returns io.EOF when
// the reply finished normally.
type Stream interface {
	Next() (string, error)
	Close() error
}

// Streamer opens a reply stream for a new turn given the prior conversation.
type Streamer interface {
	Stream(ctx context.Context, params Params, prior []Turn, turn Turn) (Stream, error)
}

// ProgressFunc receives the cumulative reply text. An empty string means the
// reply is no longer streaming.
type ProgressFunc func(partial string)

// CompleteFunc receives the finished reply.
type CompleteFunc func(Turn)
