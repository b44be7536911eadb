package theme

import (
	"strings"
	"testing"
)

func TestPaint_NoColorIsIdentity(t *testing.T) {
	p := For(false)
	for role := Plain; role <= Heading6; role++ {
		if got := p.Paint(role, "value"); got != "value" {
			t.Errorf("Paint(%d) = %q, want unchanged text", role, got)
		}
	}
}

func TestPaint_ColorEmitsEscapes(t *testing.T) {
	p := For(true)
	got := p.Paint(Keyword, "func")
	if !strings.Contains(got, "\x1b[") {
		t.Errorf("Paint(Keyword) = %q, want ANSI escapes", got)
	}
	if !strings.Contains(got, "func") {
		t.Errorf("Paint(Keyword) = %q, want original text", got)
	}
}

func TestPaint_MultiLineKeepsLineWidths(t *testing.T) {
	p := For(true)
	got := p.Paint(String, "a\nlonger line")
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if strings.Contains(lines[0], "a ") {
		t.Errorf("first line was padded: %q", lines[0])
	}
}

func TestPaint_PreservesTabs(t *testing.T) {
	p := For(true)
	if got := p.Paint(Comment, "a\tb"); !strings.Contains(got, "\t") {
		t.Errorf("Paint() = %q, want tab preserved", got)
	}
}

func TestFor_SharedInstances(t *testing.T) {
	if For(true) != For(true) {
		t.Error("For(true) should return a shared palette")
	}
	if For(true) == For(false) {
		t.Error("color and plain palettes should differ")
	}
	if For(false).Color() {
		t.Error("plain palette reports color")
	}
}

func TestHeading_ClampsLevel(t *testing.T) {
	p := For(false)
	if got := p.Heading(0, "x"); got != "x" {
		t.Errorf("Heading(0) = %q", got)
	}
	if got := p.Heading(9, "x"); got != "x" {
		t.Errorf("Heading(9) = %q", got)
	}
}

func TestPaint_UnderlinedRolesUseOneSequence(t *testing.T) {
	p := For(true)
	tests := []struct {
		name string
		role Role
		text string
		want string
	}{
		{"url", URL, "https://example.com/a?b=1", "\x1b[34;4mhttps://example.com/a?b=1\x1b[0m"},
		{"heading1", Heading1, "Title of the page", "\x1b[35;4;1mTitle of the page\x1b[0m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Paint(tt.role, tt.text)
			if got != tt.want {
				t.Errorf("Paint() = %q, want %q", got, tt.want)
			}
			if n := strings.Count(got, "\x1b[0m"); n != 1 {
				t.Errorf("got %d resets, want 1", n)
			}
		})
	}
}
