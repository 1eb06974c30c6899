package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/cli/go-gh/v2/pkg/markdown"
)

const defaultWrap = 120

// TerminalRenderer prints a streamed reply as it grows. It is fed cumulative
// text and prints each completed markdown paragraph once.
type TerminalRenderer struct {
	out       io.Writer
	markdown  *glamour.TermRenderer
	plainText bool
	latest    string
	printed   int
}

func NewTerminalRenderer(out io.Writer, usePlainText bool, wrap int) *TerminalRenderer {
	if wrap <= 0 {
		wrap = defaultWrap
	}

	var md *glamour.TermRenderer
	if !usePlainText {
		var err error
		md, err = glamour.NewTermRenderer(
			markdown.WithWrap(wrap),
			glamour.WithAutoStyle(),
		)
		if err != nil {
			usePlainText = true
		}
	}

	return &TerminalRenderer{
		out:       out,
		markdown:  md,
		plainText: usePlainText,
	}
}

// Progress accepts the reply text so far. An empty string ends the reply and
// flushes anything not yet printed.
func (t *TerminalRenderer) Progress(partial string) {
	if partial == "" {
		t.finish()
		return
	}

	// A shorter value is a new reply rather than a continuation.
	if len(partial) < t.printed || !strings.HasPrefix(partial, t.latest[:t.printed]) {
		t.printed = 0
	}
	t.latest = partial

	if idx := findMarkdownBreakPoint(partial[t.printed:]); idx > 0 {
		t.renderContent(partial[t.printed : t.printed+idx])
		t.printed += idx
	}
}

// Flush prints whatever is pending and resets for the next reply. Callers use
// it to keep a partial reply on screen after a failure.
func (t *TerminalRenderer) Flush() {
	t.finish()
}

func (t *TerminalRenderer) finish() {
	if remaining := t.latest[t.printed:]; remaining != "" {
		t.renderContent(remaining)
	}
	if t.latest != "" {
		fmt.Fprintln(t.out)
	}
	t.latest = ""
	t.printed = 0
}

func (t *TerminalRenderer) renderContent(content string) {
	if t.plainText {
		fmt.Fprint(t.out, content)
		return
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	if strings.HasPrefix(content, "#") {
		fmt.Fprintln(t.out)
	}

	mdContent, err := t.markdown.Render(content)
	if err != nil {
		// Fall back to the raw text rather than losing output.
		fmt.Fprintln(t.out, content)
		return
	}

	fmt.Fprintln(t.out, strings.TrimSpace(mdContent))
}

func findMarkdownBreakPoint(content string) int {
	const marker string = "\n\n"
	lastBreak := -1
	idx := strings.LastIndex(content, marker)
	if idx > lastBreak {
		lastBreak = idx + len(marker)
	}
	return lastBreak
}
