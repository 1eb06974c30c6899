package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/markis/copilot-chat/internal/stream"
)

// Drain reads st to the end, reporting the cumulative text after every
// fragment. On success it calls onComplete once with the agent turn and then
// onProgress(""). On failure neither happens: whatever partial text the caller
// has already displayed is left for the caller to keep or discard.
//
// The stream is always closed.
func Drain(st Stream, onProgress ProgressFunc, onComplete CompleteFunc) (Turn, error) {
	defer func() {
		_ = st.Close()
	}()

	var acc strings.Builder
	for {
		frag, err := st.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Turn{}, err
		}

		acc.WriteString(frag)
		if onProgress != nil {
			onProgress(acc.String())
		}
	}

	turn := Turn{Text: acc.String(), Speaker: Agent}
	if onComplete != nil {
		onComplete(turn)
	}
	if onProgress != nil {
		onProgress("")
	}
	return turn, nil
}

// Sender sends a turn and streams the reply back through callbacks.
type Sender struct {
	streamer Streamer
	logger   *slog.Logger
}

func NewSender(streamer Streamer, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{streamer: streamer, logger: logger}
}

// Send opens a reply stream for turn and drains it. Failures are logged and
// returned; a cancelled ctx yields an error matching stream.ErrCancelled, which
// callers should not present as a failure.
func (s *Sender) Send(ctx context.Context, params Params, prior []Turn, turn Turn, onProgress ProgressFunc, onComplete CompleteFunc) error {
	err := s.send(ctx, params, prior, turn, onProgress, onComplete)
	switch {
	case err == nil:
	case stream.IsCancelled(err):
		s.logger.Debug("reply cancelled", "model", params.Model)
	default:
		s.logger.Warn("reply failed", "model", params.Model, "error", err)
	}
	return err
}

func (s *Sender) send(ctx context.Context, params Params, prior []Turn, turn Turn, onProgress ProgressFunc, onComplete CompleteFunc) error {
	st, err := s.streamer.Stream(ctx, params, prior, turn)
	if err != nil {
		return fmt.Errorf("failed to open stream: %w", err)
	}

	reply, err := Drain(st, onProgress, onComplete)
	if err != nil {
		return fmt.Errorf("failed to read reply: %w", err)
	}

	s.logger.Debug("reply complete", "model", params.Model, "length", len(reply.Text))
	return nil
}
