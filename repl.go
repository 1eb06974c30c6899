package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/markis/copilot-chat/internal/render"
	"github.com/markis/copilot-chat/internal/session"
)

const inputPrompt = "> "

// chatLoop runs the interactive chat. Each line is one turn; /reset clears the
// conversation and /exit or EOF ends it.
func chatLoop(ctx context.Context, sess *session.Session, renderer *render.TerminalRenderer, initial []string, in io.Reader, out io.Writer) error {
	if len(initial) > 0 {
		if err := ask(ctx, sess, renderer, strings.Join(initial, "\n\n")); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	fmt.Fprint(out, inputPrompt)
	for scanner.Scan() {
		switch line := strings.TrimSpace(scanner.Text()); line {
		case "":
		case "/exit", "/quit":
			return nil
		case "/reset":
			sess.Reset()
			fmt.Fprintln(out, "Conversation cleared.")
		default:
			if err := ask(ctx, sess, renderer, line); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
			}
		}
		fmt.Fprint(out, inputPrompt)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	fmt.Fprintln(out)
	return nil
}
