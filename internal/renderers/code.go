package renderers

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/filetype"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/highlight"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/render"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/termtext"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/theme"
)

// Code renderer ceilings.
const (
	CodeMaxBytes = 1 * MB
	CodeMaxLines = 1000
)

const gutterSeparator = " │ "

// minCodeBudget keeps wrapping sane on very narrow terminals.
const minCodeBudget = 10

// CodeRenderer highlights source code.
type CodeRenderer struct {
	base
	wrap bool
}

// CodeRendererOption configures the CodeRenderer.
type CodeRendererOption func(*CodeRenderer)

// WithWrap enables or disables wrapping of long lines.
func WithWrap(enabled bool) CodeRendererOption {
	return func(r *CodeRenderer) {
		r.wrap = enabled
	}
}

// NewCodeRenderer creates a CodeRenderer for every language tag plus XML.
func NewCodeRenderer(opts ...CodeRendererOption) *CodeRenderer {
	tags := append(filetype.LanguageTags(), filetype.XML)
	r := &CodeRenderer{
		base: newBase("code", 80, render.Limits{
			MaxBytes:    CodeMaxBytes,
			MaxLines:    CodeMaxLines,
			Alternative: "less -N %s",
		}, tags...),
		wrap: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render highlights content line by line.
func (r *CodeRenderer) Render(content []byte, filename string, _ render.Metadata, opts render.Options) (string, error) {
	opts = opts.Normalize()
	p := theme.For(opts.ColorOutput)

	source := strings.ToValidUTF8(string(content), "�")
	source = strings.ReplaceAll(source, "\r\n", "\n")
	source = strings.TrimSuffix(source, "\n")

	tag := filetype.Detect(filename, nil)
	lines := highlight.Tokenize(string(tag), filename, source)

	digits := 0
	if opts.LineNumbers {
		digits = len(strconv.Itoa(len(lines)))
	}
	gutterWidth := 0
	if digits > 0 {
		gutterWidth = digits + utf8.RuneCountInString(gutterSeparator)
	}
	budget := max(opts.MaxWidth-gutterWidth, minCodeBudget)

	sep := p.Paint(theme.Border, gutterSeparator)
	blank := strings.Repeat(" ", digits) + sep

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}

		segments := []highlight.Line{line}
		if r.wrap {
			if cuts := termtext.BreakPoints(line.Text(), budget); len(cuts) > 0 {
				segments = SplitLine(line, cuts)
			}
		}

		for j, seg := range segments {
			if j > 0 {
				b.WriteByte('\n')
			}
			if digits > 0 {
				if j == 0 {
					b.WriteString(p.Paint(theme.Label, termtext.PadLeft(strconv.Itoa(i+1), digits)))
					b.WriteString(sep)
				} else {
					b.WriteString(blank)
				}
			}
			b.WriteString(highlight.Paint(seg, p))
		}
	}
	return b.String(), nil
}

// SplitLine splits a highlighted line at rune offsets, keeping each
// fragment's category.
func SplitLine(line highlight.Line, cuts []int) []highlight.Line {
	out := make([]highlight.Line, 0, len(cuts)+1)
	var cur highlight.Line
	pos := 0
	next := 0

	for _, span := range line {
		text := span.Text
		for text != "" {
			if next < len(cuts) && pos == cuts[next] {
				out = append(out, cur)
				cur = nil
				next++
				continue
			}
			n := utf8.RuneCountInString(text)
			take := n
			if next < len(cuts) && pos+n > cuts[next] {
				take = cuts[next] - pos
			}
			idx := byteOffset(text, take)
			cur = append(cur, highlight.Span{Text: text[:idx], Category: span.Category})
			text = text[idx:]
			pos += take
		}
	}
	for next < len(cuts) && pos == cuts[next] {
		out = append(out, cur)
		cur = nil
		next++
	}
	return append(out, cur)
}

func byteOffset(s string, runes int) int {
	i := 0
	for idx := range s {
		if i == runes {
			return idx
		}
		i++
	}
	return len(s)
}
