package renderers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/render"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/termtext"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/theme"
)

func TestTextRenderer_Empty(t *testing.T) {
	out, err := NewTextRenderer().Render(nil, "empty.txt", render.Metadata{}, plainOpts())
	require.NoError(t, err)
	assert.Equal(t, "(empty file)", out)
}

func TestTextRenderer_WrapsAndExpandsTabs(t *testing.T) {
	src := "col\tvalue\n" + strings.Repeat("lorem ipsum ", 10) + "\r\n"
	out, err := NewTextRenderer().Render([]byte(src), "notes.txt", render.Metadata{}, render.Options{MaxWidth: 20})
	require.NoError(t, err)

	assert.NotContains(t, out, "\t")
	assert.NotContains(t, out, "\r")
	for _, l := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, termtext.Width(l), 20, l)
	}
	assert.True(t, strings.HasPrefix(out, "col value\n"), out)
}

func TestHighlightText(t *testing.T) {
	color := theme.For(true)

	type styled struct {
		role theme.Role
		text string
	}
	tests := []struct {
		name   string
		line   string
		spans  int
		styled []styled
	}{
		{"url", "see https://example.com/a?b=1 now", 1, []styled{{theme.URL, "https://example.com/a?b=1"}}},
		{"path inside string", `open "./a/b.txt" please`, 1, []styled{{theme.String, `"./a/b.txt"`}}},
		{"path", "edit /etc/hosts today", 1, []styled{{theme.Path, "/etc/hosts"}}},
		{"relative path", "see docs/guide.md", 1, []styled{{theme.Path, "docs/guide.md"}}},
		{"paren", "value (default) set", 1, []styled{{theme.Dim, "(default)"}}},
		{"number", "total 42 items", 1, []styled{{theme.Number, "42"}}},
		{"number in word", "abc123 def", 0, nil},
		{"apostrophe", "don't stop", 0, nil},
		{"mixed", `got 3 from "x" at https://a.io`, 3, []styled{
			{theme.Number, "3"}, {theme.String, `"x"`}, {theme.URL, "https://a.io"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := HighlightText(tt.line, color)
			assert.Equal(t, tt.line, termtext.Strip(out))
			assert.Equal(t, tt.spans, strings.Count(out, "\x1b[0m"), out)
			for _, s := range tt.styled {
				assert.Contains(t, out, color.Paint(s.role, s.text), s.text)
			}
		})
	}
}

func TestHighlightText_NoColor(t *testing.T) {
	line := `see "quoted" https://example.com (x) 42`
	assert.Equal(t, line, HighlightText(line, theme.For(false)))
}
