package render

import (
	"bytes"
	"testing"
)

func TestTerminalRenderer_PlainStreamsParagraphsOnce(t *testing.T) {
	var out bytes.Buffer
	r := NewTerminalRenderer(&out, true, 0)

	r.Progress("First")
	if out.Len() != 0 {
		t.Fatalf("printed before a paragraph completed: %q", out.String())
	}

	r.Progress("First para.\n\nSec")
	if got := out.String(); got != "First para.\n\n" {
		t.Fatalf("got %q", got)
	}

	r.Progress("First para.\n\nSecond para.")
	r.Progress("")
	if got := out.String(); got != "First para.\n\nSecond para.\n" {
		t.Fatalf("got %q", got)
	}
}

func TestTerminalRenderer_FlushKeepsPartialReply(t *testing.T) {
	var out bytes.Buffer
	r := NewTerminalRenderer(&out, true, 0)

	r.Progress("partial answ")
	r.Flush()

	if got := out.String(); got != "partial answ\n" {
		t.Fatalf("got %q", got)
	}

	// The next reply starts from a clean slate.
	out.Reset()
	r.Progress("new")
	r.Progress("")
	if got := out.String(); got != "new\n" {
		t.Fatalf("got %q", got)
	}
}

func TestTerminalRenderer_EndWithoutTextPrintsNothing(t *testing.T) {
	var out bytes.Buffer
	r := NewTerminalRenderer(&out, true, 0)
	r.Progress("")
	r.Flush()
	if out.Len() != 0 {
		t.Fatalf("got %q", out.String())
	}
}

func TestTerminalRenderer_Markdown(t *testing.T) {
	var out bytes.Buffer
	r := NewTerminalRenderer(&out, false, 80)

	r.Progress("# Title\n\nSome **bold** text")
	r.Progress("")

	if !bytes.Contains(out.Bytes(), []byte("Title")) || !bytes.Contains(out.Bytes(), []byte("bold")) {
		t.Fatalf("rendered output missing content: %q", out.String())
	}
}

func TestFindMarkdownBreakPoint(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", -1},
		{"no break", -1},
		{"a\n\nb", 3},
		{"a\n\nb\n\nc", 6},
	}
	for _, tt := range tests {
		if got := findMarkdownBreakPoint(tt.in); got != tt.want {
			t.Errorf("findMarkdownBreakPoint(%q)=%d, want %d", tt.in, got, tt.want)
		}
	}
}
