package args

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/markis/copilot-chat/internal/config"
)

func testConfig() config.Config {
	return config.Config{
		Model:       "gpt-3.5-turbo",
		Temperature: 0.7,
		MaxTokens:   1000,
		LogLevel:    "error",
		Render:      config.Render{Format: "plain"},
		Prompts: map[string]config.Prompt{
			"explain": {Prompt: "Explain the code above", Model: "gpt-4"},
		},
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		stdin   string
		want    Arguments
		wantErr string
	}{
		{
			name: "direct prompt",
			argv: []string{"what is go?"},
			want: Arguments{Prompts: []string{"what is go?"}, Model: "gpt-3.5-turbo"},
		},
		{
			name: "flags",
			argv: []string{"--model", "gpt-4o", "--temperature", "0.1", "--max-tokens", "50", "hi"},
			want: Arguments{Prompts: []string{"hi"}, Model: "gpt-4o", Temperature: 0.1, MaxTokens: 50},
		},
		{
			name:  "predefined command with stdin",
			argv:  []string{"explain"},
			stdin: "func main() {}\n",
			want:  Arguments{Prompts: []string{"func main() {}", "Explain the code above"}, Model: "gpt-4", Command: "explain"},
		},
		{
			name: "explicit model beats predefined",
			argv: []string{"explain", "--model", "gpt-4o", "x := 1"},
			want: Arguments{Prompts: []string{"x := 1", "Explain the code above"}, Model: "gpt-4o", Command: "explain"},
		},
		{
			name: "interactive without prompt",
			argv: []string{"--chat"},
			want: Arguments{Model: "gpt-3.5-turbo", Interactive: true},
		},
		{
			name:    "nothing to send",
			argv:    nil,
			wantErr: "no prompt provided",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdin io.Reader
			if tt.stdin != "" {
				stdin = strings.NewReader(tt.stdin)
			}

			got, err := parse(context.Background(), testConfig(), tt.argv, stdin)

			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("err=%v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}

			if strings.Join(got.Prompts, "|") != strings.Join(tt.want.Prompts, "|") {
				t.Errorf("prompts=%q, want %q", got.Prompts, tt.want.Prompts)
			}
			if got.Model != tt.want.Model || got.Command != tt.want.Command || got.Interactive != tt.want.Interactive {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
			if tt.want.Temperature != 0 && got.Temperature != tt.want.Temperature {
				t.Errorf("temperature=%v", got.Temperature)
			}
			if tt.want.MaxTokens != 0 && got.MaxTokens != tt.want.MaxTokens {
				t.Errorf("max tokens=%v", got.MaxTokens)
			}
			if !got.UsePlainText {
				t.Error("plain render format should default --plain to true")
			}
		})
	}
}

func TestArguments_Prompt(t *testing.T) {
	a := Arguments{Prompts: []string{"code", "explain"}}
	if got := a.Prompt(); got != "code\n\nexplain" {
		t.Fatalf("got %q", got)
	}
}

func TestSummarizePrompt(t *testing.T) {
	long := strings.Repeat("a", 100)
	if got := summarizePrompt(long); len(got) != 60 || !strings.HasSuffix(got, "...") {
		t.Fatalf("got %q", got)
	}
	if got := summarizePrompt("  short  "); got != "short" {
		t.Fatalf("got %q", got)
	}
}
