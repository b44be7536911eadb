package renderers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/filetype"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/highlight"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/layout"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/render"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/termtext"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/theme"
)

// Block patterns.
var (
	mdHeading    = regexp.MustCompile(`^ {0,3}(#{1,6})(?:[ \t]+(.*?))?(?:[ \t]+#+)?[ \t]*$`)
	mdFence      = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})[ \t]*([^`\\s]*)")
	mdQuote      = regexp.MustCompile(`^ {0,3}>[ ]?(.*)$`)
	mdListItem   = regexp.MustCompile(`^([ \t]*)([-*+]|\d{1,9}[.)])[ \t]+(.*)$`)
	mdTask       = regexp.MustCompile(`^\[([ xX])\][ \t]+(.*)$`)
	mdTableAlign = regexp.MustCompile(`^[ \t]*\|?[ \t]*:?-+:?[ \t]*(\|[ \t]*:?-+:?[ \t]*)*\|?[ \t]*$`)
)

// Inline patterns, applied in this order after code spans are protected.
var (
	mdCodeSpan = regexp.MustCompile("``[ ]?(.+?)[ ]?``|`([^`]+)`")
	mdImage    = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)
	mdLink     = regexp.MustCompile(`\[([^\]]+)\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)
	mdAutolink = regexp.MustCompile(`<((?:https?|ftp|mailto):[^>\s]+)>`)
	mdBold     = regexp.MustCompile(`\*\*([^*\s](?:[^*]*[^*\s])?)\*\*|__([^_\s](?:[^_]*[^_\s])?)__`)
	mdStrike   = regexp.MustCompile(`~~([^~]+)~~`)
	mdItalicA  = regexp.MustCompile(`\*([^*\s](?:[^*]*[^*\s])?)\*`)
	mdItalicU  = regexp.MustCompile(`(^|[^\w])_([^_\s](?:[^_]*[^_\s])?)_($|[^\w])`)
	mdSlot     = regexp.MustCompile("\x00(\\d+)\x00")
)

// mdNoWrap matches ANSI-stripped lines the wrap pass leaves alone.
var mdNoWrap = regexp.MustCompile(`^\s*(?:#{1,6}\s|[-*+•◦▪☐☑]\s|\d+[.)]\s|[│├└┌┐┘┬┴┼─╭╮╯╰|])`)

var mdBullets = []string{"•", "◦", "▪"}

// MarkdownRenderer is the native Markdown engine. It runs a block pass, an
// inline pass over block text and a final wrap pass.
type MarkdownRenderer struct {
	base
}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		base: newBase("markdown", 100, render.Limits{
			MaxBytes:    DefaultDocumentMaxBytes,
			Alternative: "less %s",
		}, filetype.Markdown),
	}
}

// Render renders Markdown source.
func (r *MarkdownRenderer) Render(content []byte, _ string, _ render.Metadata, opts render.Options) (string, error) {
	opts = opts.Normalize()
	p := theme.For(opts.ColorOutput)

	source := strings.ToValidUTF8(string(content), "�")
	source = strings.ReplaceAll(source, "\r\n", "\n")

	md := &mdDoc{p: p, width: opts.MaxWidth}
	md.blocks(strings.Split(source, "\n"))

	out := wrapPass(md.out, opts.MaxWidth)
	rendered := strings.TrimRight(strings.Join(out, "\n"), "\n ")
	if rendered == "" {
		return p.Paint(theme.Dim, "(empty document)"), nil
	}
	return rendered, nil
}

type mdDoc struct {
	p     *theme.Palette
	width int
	out   []string

	// hang indents continuation lines of the current list item.
	hang string
}

func (d *mdDoc) emit(lines ...string) {
	d.out = append(d.out, lines...)
}

// gap separates blocks with a single blank line.
func (d *mdDoc) gap() {
	if len(d.out) > 0 && d.out[len(d.out)-1] != "" {
		d.out = append(d.out, "")
	}
}

func (d *mdDoc) blocks(lines []string) {
	for i := 0; i < len(lines); {
		line := lines[i]

		switch {
		case strings.TrimSpace(line) == "":
			i++

		case mdFence.MatchString(line):
			i = d.fence(lines, i)

		case mdHeading.MatchString(line):
			m := mdHeading.FindStringSubmatch(line)
			level := len(m[1])
			d.gap()
			d.emit(d.p.Heading(level, m[1]+" "+plainInline(m[2])))
			d.gap()
			i++

		case isRule(line):
			d.gap()
			d.emit(layout.Rule(d.width, d.p))
			d.gap()
			i++

		case mdQuote.MatchString(line):
			i = d.quote(lines, i)

		case isTableStart(lines, i):
			i = d.table(lines, i)

		case mdListItem.MatchString(line):
			i = d.list(lines, i)

		default:
			i = d.paragraph(lines, i)
		}
	}
}

func (d *mdDoc) fence(lines []string, i int) int {
	m := mdFence.FindStringSubmatch(lines[i])
	marker, lang := m[1], m[2]

	var code []string
	j := i + 1
	for ; j < len(lines); j++ {
		t := strings.TrimSpace(lines[j])
		if strings.HasPrefix(t, marker[:1]) && strings.Trim(t, marker[:1]) == "" && len(t) >= len(marker) {
			j++
			break
		}
		code = append(code, lines[j])
	}

	d.gap()
	painted := highlight.Code(lang, strings.Join(code, "\n"), d.p)
	d.emit(strings.Split(layout.CodeBox(painted, lang, d.width, d.p), "\n")...)
	d.gap()
	return j
}

func (d *mdDoc) quote(lines []string, i int) int {
	var text []string
	j := i
	for ; j < len(lines); j++ {
		m := mdQuote.FindStringSubmatch(lines[j])
		if m == nil {
			break
		}
		// Nested markers collapse into one level.
		body := m[1]
		for {
			inner := mdQuote.FindStringSubmatch(body)
			if inner == nil {
				break
			}
			body = inner[1]
		}
		text = append(text, strings.TrimSpace(body))
	}

	bar := d.p.Paint(theme.Border, "│") + " "
	d.gap()
	for _, para := range splitParagraphs(text) {
		for _, l := range termtext.WrapLines(inline(para, d.p), d.width-2) {
			d.emit(bar + d.p.Paint(theme.Dim, l))
		}
	}
	d.gap()
	return j
}

func (d *mdDoc) table(lines []string, i int) int {
	header := splitRow(lines[i])
	aligns := parseAligns(lines[i+1])

	j := i + 2
	var rows [][]string
	for ; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == "" || !strings.Contains(lines[j], "|") {
			break
		}
		rows = append(rows, splitRow(lines[j]))
	}

	for k, c := range header {
		header[k] = inline(c, d.p)
	}
	for _, row := range rows {
		for k, c := range row {
			row[k] = inline(c, d.p)
		}
	}

	spec := layout.TableSpec{Header: header, Rows: rows, Align: aligns}
	d.gap()
	d.emit(strings.Split(layout.Table(spec.Fit(d.width), d.p), "\n")...)
	d.gap()
	return j
}

func (d *mdDoc) list(lines []string, i int) int {
	counters := map[int]int{}
	j := i
	for ; j < len(lines); j++ {
		line := lines[j]
		m := mdListItem.FindStringSubmatch(line)
		if m == nil {
			// Lazy continuation lines extend the previous item.
			if strings.TrimSpace(line) == "" || d.hang == "" || !startsIndented(line) {
				break
			}
			d.continueItem(strings.TrimSpace(line))
			continue
		}

		depth := indentWidth(m[1]) / 2
		for k := range counters {
			if k > depth {
				delete(counters, k)
			}
		}

		marker, text := m[2], m[3]
		var bullet string
		switch {
		case mdTask.MatchString(text):
			t := mdTask.FindStringSubmatch(text)
			bullet = "☐"
			if t[1] != " " {
				bullet = "☑"
			}
			text = t[2]
		case strings.ContainsAny(marker[:1], "-*+"):
			bullet = mdBullets[min(depth, len(mdBullets)-1)]
		default:
			n := counters[depth]
			if n == 0 {
				n, _ = strconv.Atoi(strings.TrimRight(marker, ".)"))
			} else {
				n++
			}
			counters[depth] = n
			bullet = fmt.Sprintf("%d.", n)
		}

		d.item(depth, bullet, text)
	}
	d.gap()
	return j
}

func (d *mdDoc) item(depth int, bullet, text string) {
	indent := strings.Repeat("  ", depth)
	prefix := indent + bullet + " "
	hang := strings.Repeat(" ", termtext.Width(prefix))
	d.hang = hang

	wrapped := termtext.WrapLines(inline(text, d.p), max(d.width-termtext.Width(prefix), 10))
	for k, l := range wrapped {
		if k == 0 {
			d.emit(indent + d.p.Paint(theme.Accent, bullet) + " " + l)
			continue
		}
		d.emit(hang + l)
	}
}

func (d *mdDoc) continueItem(text string) {
	for _, l := range termtext.WrapLines(inline(text, d.p), max(d.width-len(d.hang), 10)) {
		d.emit(d.hang + l)
	}
}

func (d *mdDoc) paragraph(lines []string, i int) int {
	var parts []string
	j := i
	for ; j < len(lines); j++ {
		line := lines[j]
		if strings.TrimSpace(line) == "" || j > i && startsBlock(lines, j) {
			break
		}
		// Two trailing spaces or a backslash force a line break.
		if strings.HasSuffix(line, "  ") || strings.HasSuffix(line, "\\") {
			parts = append(parts, strings.TrimSpace(strings.TrimSuffix(line, "\\")), "\n")
			continue
		}
		parts = append(parts, strings.TrimSpace(line))
	}

	text := strings.Join(parts, " ")
	text = strings.ReplaceAll(text, " \n ", "\n")
	text = strings.TrimSuffix(text, " \n")

	d.gap()
	d.emit(strings.Split(inline(text, d.p), "\n")...)
	d.gap()
	return j
}

func startsBlock(lines []string, i int) bool {
	line := lines[i]
	return mdFence.MatchString(line) || mdHeading.MatchString(line) || isRule(line) ||
		mdQuote.MatchString(line) || mdListItem.MatchString(line) || isTableStart(lines, i)
}

func isRule(line string) bool {
	t := strings.ReplaceAll(strings.ReplaceAll(strings.TrimSpace(line), " ", ""), "\t", "")
	if len(t) < 3 {
		return false
	}
	c := t[0]
	if c != '-' && c != '*' && c != '_' {
		return false
	}
	return strings.Count(t, string(c)) == len(t)
}

func isTableStart(lines []string, i int) bool {
	return i+1 < len(lines) &&
		strings.Contains(lines[i], "|") &&
		strings.Contains(lines[i+1], "-") &&
		mdTableAlign.MatchString(lines[i+1])
}

func splitRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	if strings.HasSuffix(line, "|") && !strings.HasSuffix(line, `\|`) {
		line = line[:len(line)-1]
	}

	var cells []string
	var cur strings.Builder
	for k := 0; k < len(line); k++ {
		switch {
		case line[k] == '\\' && k+1 < len(line) && line[k+1] == '|':
			cur.WriteByte('|')
			k++
		case line[k] == '|':
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(line[k])
		}
	}
	return append(cells, strings.TrimSpace(cur.String()))
}

func parseAligns(line string) []layout.Align {
	cells := splitRow(line)
	out := make([]layout.Align, len(cells))
	for k, c := range cells {
		left, right := strings.HasPrefix(c, ":"), strings.HasSuffix(c, ":")
		switch {
		case left && right:
			out[k] = layout.AlignCenter
		case right:
			out[k] = layout.AlignRight
		}
	}
	return out
}

func splitParagraphs(lines []string) []string {
	var out []string
	var cur []string
	for _, l := range lines {
		if l == "" {
			if len(cur) > 0 {
				out = append(out, strings.Join(cur, " "))
				cur = nil
			}
			continue
		}
		cur = append(cur, l)
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, " "))
	}
	return out
}

func indentWidth(s string) int {
	n := 0
	for _, r := range s {
		if r == '\t' {
			n += 4
		} else {
			n++
		}
	}
	return n
}

func startsIndented(line string) bool {
	return strings.HasPrefix(line, "  ") || strings.HasPrefix(line, "\t")
}

// inline applies the inline pass to block text.
func inline(text string, p *theme.Palette) string {
	// NUL delimits held fragments; source NULs become U+FFFD.
	text = strings.ReplaceAll(text, "\x00", "\uFFFD")

	var slots []string
	hold := func(s string) string {
		slots = append(slots, s)
		return fmt.Sprintf("\x00%d\x00", len(slots)-1)
	}

	text = mdCodeSpan.ReplaceAllStringFunc(text, func(m string) string {
		sub := mdCodeSpan.FindStringSubmatch(m)
		code := sub[1]
		if code == "" {
			code = sub[2]
		}
		return hold(p.Paint(theme.Code, code))
	})

	text = mdImage.ReplaceAllStringFunc(text, func(m string) string {
		sub := mdImage.FindStringSubmatch(m)
		label := "[Image: " + sub[1] + "]"
		if sub[1] == "" {
			label = "[Image]"
		}
		return hold(p.Paint(theme.Accent, label) + " " + p.Paint(theme.Dim, "("+sub[2]+")"))
	})

	text = mdLink.ReplaceAllStringFunc(text, func(m string) string {
		sub := mdLink.FindStringSubmatch(m)
		label := sub[1]
		if label == sub[2] {
			return hold(p.Paint(theme.URL, label))
		}
		return hold(p.Paint(theme.URL, label) + " " + p.Paint(theme.Dim, "("+sub[2]+")"))
	})

	text = mdAutolink.ReplaceAllStringFunc(text, func(m string) string {
		return hold(p.Paint(theme.URL, mdAutolink.FindStringSubmatch(m)[1]))
	})

	text = mdBold.ReplaceAllStringFunc(text, func(m string) string {
		sub := mdBold.FindStringSubmatch(m)
		return p.Paint(theme.Bold, sub[1]+sub[2])
	})
	text = mdStrike.ReplaceAllStringFunc(text, func(m string) string {
		return p.Paint(theme.Strike, mdStrike.FindStringSubmatch(m)[1])
	})
	text = mdItalicA.ReplaceAllStringFunc(text, func(m string) string {
		return p.Paint(theme.Italic, mdItalicA.FindStringSubmatch(m)[1])
	})
	// Adjacent matches share a delimiter byte, so a second run picks up
	// the ones the first skipped.
	for range 2 {
		text = mdItalicU.ReplaceAllStringFunc(text, func(m string) string {
			sub := mdItalicU.FindStringSubmatch(m)
			return sub[1] + p.Paint(theme.Italic, sub[2]) + sub[3]
		})
	}

	// Held fragments may themselves hold fragments.
	for range len(slots) + 1 {
		if !strings.Contains(text, "\x00") {
			break
		}
		text = mdSlot.ReplaceAllStringFunc(text, func(m string) string {
			k, err := strconv.Atoi(mdSlot.FindStringSubmatch(m)[1])
			if err != nil || k >= len(slots) {
				return ""
			}
			return slots[k]
		})
	}
	return text
}

// plainInline resolves inline markup without styling.
func plainInline(text string) string {
	return inline(text, theme.For(false))
}

// wrapPass word-wraps long lines, skipping structural lines.
func wrapPass(lines []string, width int) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if termtext.Width(l) <= width || mdNoWrap.MatchString(termtext.Strip(l)) {
			out = append(out, l)
			continue
		}
		out = append(out, termtext.WrapLines(l, width)...)
	}
	return out
}
