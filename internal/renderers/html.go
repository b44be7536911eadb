package renderers

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/filetype"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/highlight"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/layout"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/render"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/termtext"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/theme"
)

// blockTags start a new block when walked.
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"body": true, "dd": true, "details": true, "div": true, "dl": true,
	"dt": true, "fieldset": true, "figcaption": true, "figure": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hr": true,
	"html": true, "li": true, "main": true, "nav": true, "ol": true,
	"p": true, "pre": true, "section": true, "summary": true,
	"table": true, "ul": true,
}

// HTMLRenderer renders HTML documents as terminal text.
type HTMLRenderer struct {
	base
	policy *bluemonday.Policy
}

// NewHTMLRenderer creates an HTMLRenderer.
func NewHTMLRenderer() *HTMLRenderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre")
	return &HTMLRenderer{
		base: newBase("html", 100, render.Limits{
			MaxBytes:    DefaultDocumentMaxBytes,
			Alternative: "lynx -dump %s",
		}, filetype.HTML),
		policy: policy,
	}
}

// Render sanitizes content and walks the result into terminal text.
func (r *HTMLRenderer) Render(content []byte, _ string, _ render.Metadata, opts render.Options) (string, error) {
	opts = opts.Normalize()
	p := theme.For(opts.ColorOutput)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse html; %w", err)
	}
	title := collapseSpace(doc.Find("title").First().Text())
	doc.Find("head").Remove()

	body, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialize html; %w", err)
	}
	clean := r.policy.Sanitize(body)

	root, err := html.Parse(strings.NewReader(clean))
	if err != nil {
		return "", fmt.Errorf("failed to parse sanitized html; %w", err)
	}

	w := &htmlWalker{p: p, width: opts.MaxWidth}
	if title != "" {
		w.emit(p.Heading(1, title), layout.Rule(min(termtext.Width(title), opts.MaxWidth), p))
		w.gap()
	}
	w.blocks(root, 0)

	out := strings.TrimRight(strings.Join(w.out, "\n"), "\n ")
	if strings.TrimSpace(out) == "" {
		return p.Paint(theme.Dim, "(empty document)"), nil
	}
	return out, nil
}

type htmlWalker struct {
	p     *theme.Palette
	width int
	out   []string
}

func (w *htmlWalker) emit(lines ...string) {
	w.out = append(w.out, lines...)
}

func (w *htmlWalker) gap() {
	if len(w.out) > 0 && w.out[len(w.out)-1] != "" {
		w.out = append(w.out, "")
	}
}

// blocks renders the children of n, grouping runs of inline nodes into
// wrapped paragraphs.
func (w *htmlWalker) blocks(n *html.Node, indent int) {
	var run []*html.Node
	flush := func() {
		if len(run) == 0 {
			return
		}
		w.paragraph(w.inlineRun(run), indent)
		run = nil
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && blockTags[c.Data] {
			flush()
			w.block(c, indent)
			continue
		}
		run = append(run, c)
	}
	flush()
}

func (w *htmlWalker) block(n *html.Node, indent int) {
	pad := strings.Repeat(" ", indent)

	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(n.Data[1] - '0')
		w.gap()
		w.emit(pad + w.p.Heading(level, strings.Repeat("#", level)+" "+collapseSpace(termtext.Strip(w.inline(n)))))
		w.gap()

	case "p":
		w.gap()
		w.blocks(n, indent)
		w.gap()

	case "hr":
		w.gap()
		w.emit(pad + layout.Rule(w.width-indent, w.p))
		w.gap()

	case "ul", "ol":
		w.gap()
		w.list(n, indent)
		w.gap()

	case "li":
		w.item(n, indent, "•")

	case "blockquote":
		sub := &htmlWalker{p: w.p, width: max(w.width-indent-2, 10)}
		sub.blocks(n, 0)
		bar := w.p.Paint(theme.Border, "│") + " "
		w.gap()
		for _, l := range trimBlank(sub.out) {
			w.emit(pad + bar + w.p.Paint(theme.Dim, l))
		}
		w.gap()

	case "pre":
		text := strings.TrimSuffix(textContent(n), "\n")
		lang := codeLanguage(n)
		w.gap()
		lines := strings.Split(layout.CodeBox(highlight.Code(lang, text, w.p), lang, w.width-indent, w.p), "\n")
		for _, l := range lines {
			w.emit(pad + l)
		}
		w.gap()

	case "table":
		w.gap()
		for _, l := range strings.Split(w.table(n, indent), "\n") {
			w.emit(pad + l)
		}
		w.gap()

	case "dt":
		w.emit(pad + w.p.Paint(theme.Bold, collapseSpace(termtext.Strip(w.inline(n)))))

	case "dd":
		w.blocks(n, indent+4)

	default:
		w.blocks(n, indent)
	}
}

func (w *htmlWalker) list(n *html.Node, indent int) {
	ordered := n.Data == "ol"
	num := 1
	if ordered {
		if v, err := strconv.Atoi(attr(n, "start")); err == nil {
			num = v
		}
	}
	depth := indent / 2
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		bullet := mdBullets[min(depth, len(mdBullets)-1)]
		if ordered {
			bullet = fmt.Sprintf("%d.", num)
			num++
		}
		w.item(c, indent, bullet)
	}
}

// item renders a list item: its inline content beside the bullet, nested
// blocks indented under it.
func (w *htmlWalker) item(n *html.Node, indent int, bullet string) {
	pad := strings.Repeat(" ", indent)
	hang := strings.Repeat(" ", indent+termtext.Width(bullet)+1)

	var run []*html.Node
	var nested []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && blockTags[c.Data] {
			nested = append(nested, c)
			continue
		}
		run = append(run, c)
	}

	text := w.inlineRun(run)
	lines := termtext.WrapLines(text, max(w.width-len(hang), 10))
	for i, l := range lines {
		if i == 0 {
			w.emit(pad + w.p.Paint(theme.Accent, bullet) + " " + l)
			continue
		}
		w.emit(hang + l)
	}

	for _, c := range nested {
		switch c.Data {
		case "ul", "ol":
			w.list(c, indent+2)
		default:
			w.block(c, len(hang))
		}
	}
}

func (w *htmlWalker) paragraph(text string, indent int) {
	text = strings.TrimSpace(text)
	if termtext.Strip(text) == "" {
		return
	}
	pad := strings.Repeat(" ", indent)
	for _, seg := range strings.Split(text, "\n") {
		for _, l := range termtext.WrapLines(strings.TrimSpace(seg), max(w.width-indent, 10)) {
			w.emit(pad + l)
		}
	}
}

func (w *htmlWalker) table(n *html.Node, indent int) string {
	var header []string
	var rows [][]string

	var visit func(*html.Node)
	visit = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "thead", "tbody", "tfoot":
				visit(c)
			case "tr":
				var cells []string
				allHeader := true
				for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type != html.ElementNode || (cell.Data != "td" && cell.Data != "th") {
						continue
					}
					if cell.Data != "th" {
						allHeader = false
					}
					cells = append(cells, strings.TrimSpace(w.inline(cell)))
				}
				if len(cells) == 0 {
					continue
				}
				if allHeader && header == nil && len(rows) == 0 {
					header = cells
					continue
				}
				rows = append(rows, cells)
			}
		}
	}
	visit(n)

	spec := layout.TableSpec{Header: header, Rows: rows}
	return layout.Table(spec.Fit(w.width-indent), w.p)
}

func (w *htmlWalker) inlineRun(nodes []*html.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		b.WriteString(w.inline(n))
	}
	return tidyInline(b.String())
}

// inline renders n and its descendants as styled text.
func (w *htmlWalker) inline(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return collapseRuns(n.Data)
	case html.ElementNode:
	default:
		return ""
	}

	children := func() string {
		var b strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			b.WriteString(w.inline(c))
		}
		return b.String()
	}

	switch n.Data {
	case "br":
		return "\n"
	case "strong", "b":
		return w.p.Paint(theme.Bold, children())
	case "em", "i", "cite", "dfn", "var":
		return w.p.Paint(theme.Italic, children())
	case "del", "s", "strike":
		return w.p.Paint(theme.Strike, children())
	case "code", "kbd", "samp", "tt":
		return w.p.Paint(theme.Code, children())
	case "a":
		text := strings.TrimSpace(children())
		href := attr(n, "href")
		if href == "" || termtext.Strip(text) == href {
			return w.p.Paint(theme.URL, text)
		}
		if text == "" {
			return w.p.Paint(theme.URL, href)
		}
		return w.p.Paint(theme.URL, text) + " " + w.p.Paint(theme.Dim, "("+href+")")
	case "img":
		label := "[Image]"
		if alt := strings.TrimSpace(attr(n, "alt")); alt != "" {
			label = "[Image: " + alt + "]"
		}
		out := w.p.Paint(theme.Accent, label)
		if src := attr(n, "src"); src != "" {
			out += " " + w.p.Paint(theme.Dim, "("+src+")")
		}
		return out
	default:
		if blockTags[n.Data] {
			return " " + children() + " "
		}
		return children()
	}
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		if node.Type == html.ElementNode && node.Data == "br" {
			b.WriteByte('\n')
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// codeLanguage reads a language-x or lang-x class on pre or its code child.
func codeLanguage(n *html.Node) string {
	candidates := []*html.Node{n}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "code" {
			candidates = append(candidates, c)
		}
	}
	for _, node := range candidates {
		for _, class := range strings.Fields(attr(node, "class")) {
			for _, prefix := range []string{"language-", "lang-"} {
				if strings.HasPrefix(class, prefix) {
					return strings.TrimPrefix(class, prefix)
				}
			}
		}
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// collapseRuns turns whitespace runs into single spaces, keeping edges.
func collapseRuns(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' || r == '\f' {
			if !space {
				b.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// tidyInline merges repeated spaces and trims spaces around breaks.
func tidyInline(s string) string {
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	s = strings.ReplaceAll(s, " \n", "\n")
	s = strings.ReplaceAll(s, "\n ", "\n")
	return s
}

func trimBlank(lines []string) []string {
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
