// Package session keeps the in-memory transcript of an interactive chat.
package session

import (
	"context"
	"slices"

	"github.com/markis/copilot-chat/internal/chat"
)

// Session is a conversation with one model. It is not safe for concurrent use;
// one reply streams at a time.
type Session struct {
	sender   *chat.Sender
	params   chat.Params
	progress chat.ProgressFunc
	turns    []chat.Turn
}

// New starts an empty session. progress receives the cumulative reply text
// while a reply streams and may be nil.
func New(sender *chat.Sender, params chat.Params, progress chat.ProgressFunc) *Session {
	return &Session{sender: sender, params: params, progress: progress}
}

// Ask sends prompt with the conversation so far. The prompt and the reply are
// recorded only when the reply completes; on failure or cancellation the
// transcript is unchanged.
func (s *Session) Ask(ctx context.Context, prompt string) (chat.Turn, error) {
	turn := chat.Turn{Text: prompt, Speaker: chat.Human}

	var reply chat.Turn
	err := s.sender.Send(ctx, s.params, s.History(), turn, s.progress, func(t chat.Turn) {
		reply = t
	})
	if err != nil {
		return chat.Turn{}, err
	}

	s.turns = append(s.turns, turn, reply)
	return reply, nil
}

// History returns a copy of the transcript.
func (s *Session) History() []chat.Turn {
	return slices.Clone(s.turns)
}

// Reset clears the transcript.
func (s *Session) Reset() {
	s.turns = nil
}
