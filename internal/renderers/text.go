package renderers

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/filetype"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/render"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/termtext"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/theme"
)

// Text renderer ceilings.
const (
	TextMaxBytes = 1 * MB
	TextMaxLines = 20000
)

// textPass is one highlight pass. Passes run in slice order and a later
// pass never claims bytes an earlier pass already took.
type textPass struct {
	re   *regexp.Regexp
	role theme.Role

	// wordStart requires the match to start the text or follow a
	// non-word byte.
	wordStart bool
}

var textPasses = []textPass{
	{re: regexp.MustCompile(`(?:https?|ftp|file)://[^\s<>"'` + "`" + `)\]]+`), role: theme.URL},
	{re: regexp.MustCompile(`"(?:[^"\\\n]|\\.)*"`), role: theme.String},
	{re: regexp.MustCompile(`'(?:[^'\\\n]|\\.)*'`), role: theme.String, wordStart: true},
	{re: regexp.MustCompile(`(?:~|\.{1,2})?/[\w.\-@+]+(?:/[\w.\-@+]+)*/?|[\w.\-@+]+(?:/[\w.\-@+]+)+/?`), role: theme.Path, wordStart: true},
	{re: regexp.MustCompile(`\([^()\n]*\)`), role: theme.Dim},
	{re: regexp.MustCompile(`\b\d+(?:[.,]\d+)*\b`), role: theme.Number},
}

// TextRenderer is the universal textual renderer.
type TextRenderer struct {
	base
}

// NewTextRenderer creates a TextRenderer.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{
		base: newBase("text", 10, render.Limits{
			MaxBytes:    TextMaxBytes,
			MaxLines:    TextMaxLines,
			Alternative: "less %s",
		}, filetype.Text, filetype.Unknown),
	}
}

// Render highlights and word-wraps plain text.
func (r *TextRenderer) Render(content []byte, _ string, _ render.Metadata, opts render.Options) (string, error) {
	opts = opts.Normalize()
	p := theme.For(opts.ColorOutput)

	if len(content) == 0 {
		return p.Paint(theme.Dim, "(empty file)"), nil
	}

	text := strings.ToValidUTF8(string(content), "�")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimRight(text, "\n")

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = expandTabs(line)
		out = append(out, termtext.Wrap(HighlightText(line, p), opts.MaxWidth))
	}
	return strings.Join(out, "\n"), nil
}

// HighlightText applies the text highlight passes to a single line.
func HighlightText(line string, p *theme.Palette) string {
	if !p.Color() || line == "" {
		return line
	}

	type span struct {
		start, end int
		role       theme.Role
	}

	claimed := make([]bool, len(line))
	var spans []span

	for _, pass := range textPasses {
		for _, loc := range pass.re.FindAllStringIndex(line, -1) {
			start, end := loc[0], loc[1]
			if pass.wordStart && start > 0 && isWordByte(line, start) {
				continue
			}
			free := true
			for i := start; i < end; i++ {
				if claimed[i] {
					free = false
					break
				}
			}
			if !free {
				continue
			}
			for i := start; i < end; i++ {
				claimed[i] = true
			}
			spans = append(spans, span{start, end, pass.role})
		}
	}

	if len(spans) == 0 {
		return line
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var b strings.Builder
	prev := 0
	for _, s := range spans {
		b.WriteString(line[prev:s.start])
		b.WriteString(p.Paint(s.role, line[s.start:s.end]))
		prev = s.end
	}
	b.WriteString(line[prev:])
	return b.String()
}

func isWordByte(s string, i int) bool {
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		if r == '\t' {
			n := 4 - col%4
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}
