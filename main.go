package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/markis/copilot-chat/internal/args"
	"github.com/markis/copilot-chat/internal/chat"
	"github.com/markis/copilot-chat/internal/client"
	"github.com/markis/copilot-chat/internal/config"
	"github.com/markis/copilot-chat/internal/render"
	"github.com/markis/copilot-chat/internal/session"
	"github.com/markis/copilot-chat/internal/stream"
)

// main function to parse arguments and initiate the chat request.
func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	a, err := args.ParseArgs(ctx, *cfg)
	if err != nil {
		return err
	}

	cfg.LogLevel = a.LogLevel
	cfg.Temperature = a.Temperature
	cfg.MaxTokens = a.MaxTokens

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		return err
	}

	params := cfg.Params(a.Model)
	renderer := render.NewTerminalRenderer(os.Stdout, a.UsePlainText, cfg.Render.Wrap)
	cl := client.New(
		client.WithBaseURL(cfg.BaseURL()),
		client.WithLogger(logger),
	)
	sess := session.New(chat.NewSender(cl, logger), params, renderer.Progress)

	if a.Interactive {
		return chatLoop(ctx, sess, renderer, a.Prompts, os.Stdin, os.Stdout)
	}
	return ask(ctx, sess, renderer, a.Prompt())
}

// ask sends one prompt. Ctrl-C stops the reply; whatever was already printed
// stays on screen and a user stop is not reported as an error.
func ask(ctx context.Context, sess *session.Session, renderer *render.TerminalRenderer, prompt string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if _, err := sess.Ask(ctx, prompt); err != nil {
		renderer.Flush()
		if stream.IsCancelled(err) {
			return nil
		}
		return err
	}
	return nil
}
