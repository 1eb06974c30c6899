package args

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/markis/copilot-chat/internal/config"
	"github.com/spf13/cobra"
)

// Arguments represents the command-line arguments structure.
type Arguments struct {
	Prompts      []string
	Model        string
	Command      string
	UsePlainText bool
	Interactive  bool
	Temperature  float64
	MaxTokens    int
	LogLevel     string
}

// Prompt joins the collected prompts into the text of a single turn.
func (a Arguments) Prompt() string {
	return strings.Join(a.Prompts, "\n\n")
}

// ParseArgs parses command-line arguments and stdin input, returning an Arguments struct.
// It uses Cobra to handle commands and flags, allowing for both predefined commands and direct prompts.
// Piped stdin becomes the first prompt unless the interactive chat is requested.
func ParseArgs(ctx context.Context, cfg config.Config) (Arguments, error) {
	var stdin io.Reader
	if stat, err := os.Stdin.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		stdin = os.Stdin
	}
	return parse(ctx, cfg, os.Args[1:], stdin)
}

func parse(ctx context.Context, cfg config.Config, argv []string, stdin io.Reader) (Arguments, error) {
	args := Arguments{}

	rootCmd := &cobra.Command{
		Use:   "copilot-chat [command] [flags] [prompt]",
		Short: "Chat with an OpenAI model from the terminal",
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			// Handle direct prompts (when no command is specified)
			if len(cmdArgs) > 0 {
				args.Prompts = append(args.Prompts, cmdArgs[0])
			}
			return nil
		},
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true, // We'll handle error reporting
		SilenceUsage:  true, // We'll handle usage display
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&args.Model, "model", cfg.Model, "The AI model to use")
	flags.BoolVar(&args.UsePlainText, "plain", shouldUsePlainText(cfg), "Disable markdown rendering")
	flags.BoolVarP(&args.Interactive, "chat", "i", false, "Start an interactive chat that keeps the conversation")
	flags.Float64Var(&args.Temperature, "temperature", cfg.Temperature, "Sampling temperature between 0 and 2")
	flags.IntVar(&args.MaxTokens, "max-tokens", cfg.MaxTokens, "Maximum number of tokens in the reply")
	flags.StringVar(&args.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")

	// Add predefined commands
	for name, prompt := range cfg.Prompts {
		cmd := &cobra.Command{
			Use:   name + " [input]",
			Short: summarizePrompt(prompt.Prompt),
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, cmdArgs []string) error {
				args.Command = name
				if len(cmdArgs) > 0 {
					args.Prompts = append(args.Prompts, cmdArgs[0])
				}
				args.Prompts = append(args.Prompts, prompt.Prompt)
				if prompt.Model != "" && !cmd.Flags().Changed("model") {
					args.Model = prompt.Model
				}
				return nil
			},
		}
		rootCmd.AddCommand(cmd)
	}

	// Execute the command; a nil slice would make cobra fall back to os.Args
	if argv == nil {
		argv = []string{}
	}
	rootCmd.SetArgs(argv)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return Arguments{}, err
	}

	// Read from stdin if available
	if stdin != nil && !args.Interactive {
		prompt, err := readPrompt(stdin)
		if err != nil {
			return Arguments{}, err
		}
		if prompt != "" {
			args.Prompts = append([]string{prompt}, args.Prompts...)
		}
	}

	// Check if we have any prompts
	if len(args.Prompts) == 0 && !args.Interactive {
		return Arguments{}, errors.New("no prompt provided")
	}

	return args, nil
}

func readPrompt(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) // 1MB max buffer
	var buf strings.Builder
	for scanner.Scan() {
		buf.WriteString(scanner.Text())
		buf.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// shouldUsePlainText determines if plain text output should be used based on environment and terminal settings.
func shouldUsePlainText(cfg config.Config) bool {
	// Check if the rendering format is set to plain
	if cfg.Render.Format == config.FormatPlain {
		return true
	}

	// Check if output is being redirected
	if fileInfo, _ := os.Stdout.Stat(); fileInfo != nil {
		if (fileInfo.Mode() & os.ModeCharDevice) == 0 {
			return true
		}
	}

	// Check for NO_COLOR environment variable
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}

	// Check for TERM=dumb
	if term := os.Getenv("TERM"); term == "dumb" {
		return true
	}

	return false
}

func summarizePrompt(prompt string) string {
	// Trim and limit the length of the prompt summary
	summary := strings.TrimSpace(prompt)
	if len(summary) > 60 {
		summary = summary[:57] + "..."
	}
	return summary
}
