package renderers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/filetype"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/render"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/termtext"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/theme"
)

// JSON renderer defaults.
const (
	DefaultJSONMaxDepth     = 10
	DefaultJSONArrayPreview = 5

	// JSONLMaxRecords bounds the records shown for JSON Lines input.
	JSONLMaxRecords = 100

	jsonRawPreview    = 500
	jsonContextRadius = 50
)

// maxDepthMarker replaces containers nested deeper than the limit.
const maxDepthMarker = `"[Max depth exceeded]"`

// JSONRenderer renders JSON documents and JSON Lines.
type JSONRenderer struct {
	base
	maxDepth     int
	arrayPreview int
}

// JSONRendererOption configures the JSONRenderer.
type JSONRendererOption func(*JSONRenderer)

// WithMaxDepth sets the deepest container level printed in full.
func WithMaxDepth(depth int) JSONRendererOption {
	return func(r *JSONRenderer) {
		if depth > 0 {
			r.maxDepth = depth
		}
	}
}

// WithArrayPreview sets how many array items are shown before eliding.
func WithArrayPreview(n int) JSONRendererOption {
	return func(r *JSONRenderer) {
		if n > 0 {
			r.arrayPreview = n
		}
	}
}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer(opts ...JSONRendererOption) *JSONRenderer {
	r := &JSONRenderer{
		base: newBase("json", 100, render.Limits{
			MaxBytes:    DefaultDocumentMaxBytes,
			Alternative: "jq . %s",
		}, filetype.JSON, filetype.JSONL),
		maxDepth:     DefaultJSONMaxDepth,
		arrayPreview: DefaultJSONArrayPreview,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render validates content and prints a structure summary and a tree.
// Invalid JSON is reported in the output, not as an error.
func (r *JSONRenderer) Render(content []byte, filename string, _ render.Metadata, opts render.Options) (string, error) {
	opts = opts.Normalize()
	p := theme.For(opts.ColorOutput)

	if tag, _ := filetype.DetectByName(filename); tag == filetype.JSONL {
		return r.renderLines(content, p, opts.MaxWidth), nil
	}

	var v any
	if err := json.Unmarshal(content, &v); err != nil {
		return InvalidJSON(content, err, p), nil
	}

	doc := gjson.ParseBytes(content)
	var b strings.Builder
	b.WriteString(Summarize(doc).Format(p))
	b.WriteString("\n\n")
	pr := jsonPrinter{p: p, maxDepth: r.maxDepth, preview: r.arrayPreview}
	pr.write(&b, doc, 0)
	return b.String(), nil
}

func (r *JSONRenderer) renderLines(content []byte, p *theme.Palette, width int) string {
	pr := jsonPrinter{p: p, maxDepth: r.maxDepth, preview: r.arrayPreview, compact: true}

	var out []string
	records, invalid, hidden := 0, 0, 0
	for _, line := range bytes.Split(content, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		records++
		if records > JSONLMaxRecords {
			hidden++
			continue
		}

		label := p.Paint(theme.Label, fmt.Sprintf("%4d │ ", records))
		if !json.Valid(line) {
			invalid++
			raw := termtext.TruncatePlain(strings.ToValidUTF8(string(line), "�"), max(width-24, 10))
			out = append(out, label+p.Paint(theme.Error, "invalid JSON: ")+raw)
			continue
		}
		var b strings.Builder
		pr.write(&b, gjson.ParseBytes(line), 0)
		out = append(out, termtext.Wrap(label+b.String(), width))
	}

	if records == 0 {
		return p.Paint(theme.Dim, "(no records)")
	}

	summary := fmt.Sprintf("%d records", records)
	if invalid > 0 {
		summary += fmt.Sprintf(", %d invalid", invalid)
	}
	header := p.Paint(theme.Bold, "JSON Lines") + " " + p.Paint(theme.Dim, "("+summary+")")

	if hidden > 0 {
		out = append(out, p.Paint(theme.Dim, fmt.Sprintf("… %d more records not shown", hidden)))
	}
	return header + "\n\n" + strings.Join(out, "\n")
}

// JSONStats summarizes the structure of a document.
type JSONStats struct {
	// Root is "object", "array", "string", "number", "boolean" or "null".
	Root string

	// TopLevel is the key count of an object root or the item count of an
	// array root.
	TopLevel int

	// MaxDepth is the deepest container level; the root is level 0.
	MaxDepth int

	// Objects counts objects below the root.
	Objects int
	Arrays  int

	LargestArray int

	Strings  int
	Numbers  int
	Booleans int
	Nulls    int
}

// Scalars returns the total scalar count.
func (s JSONStats) Scalars() int {
	return s.Strings + s.Numbers + s.Booleans + s.Nulls
}

// Summarize walks doc in document order.
func Summarize(doc gjson.Result) JSONStats {
	var s JSONStats
	s.Root = jsonKind(doc)
	switch {
	case doc.IsObject():
		doc.ForEach(func(_, _ gjson.Result) bool { s.TopLevel++; return true })
	case doc.IsArray():
		s.TopLevel = len(doc.Array())
	}

	var walk func(v gjson.Result, depth int)
	walk = func(v gjson.Result, depth int) {
		switch {
		case v.IsObject():
			if depth > 0 {
				s.Objects++
			}
			s.MaxDepth = max(s.MaxDepth, depth)
			v.ForEach(func(_, child gjson.Result) bool { walk(child, depth+1); return true })
		case v.IsArray():
			s.Arrays++
			s.MaxDepth = max(s.MaxDepth, depth)
			items := v.Array()
			s.LargestArray = max(s.LargestArray, len(items))
			for _, child := range items {
				walk(child, depth+1)
			}
		case v.Type == gjson.String:
			s.Strings++
		case v.Type == gjson.Number:
			s.Numbers++
		case v.Type == gjson.True, v.Type == gjson.False:
			s.Booleans++
		default:
			s.Nulls++
		}
	}
	walk(doc, 0)
	return s
}

// Format renders the summary block.
func (s JSONStats) Format(p *theme.Palette) string {
	root := s.Root
	switch s.Root {
	case "object":
		root = fmt.Sprintf("object (%s)", plural(s.TopLevel, "key"))
	case "array":
		root = fmt.Sprintf("array (%s)", plural(s.TopLevel, "item"))
	}

	var scalars []string
	for _, c := range []struct {
		n    int
		name string
	}{{s.Strings, "string"}, {s.Numbers, "number"}, {s.Booleans, "boolean"}, {s.Nulls, "null"}} {
		if c.n > 0 {
			scalars = append(scalars, plural(c.n, c.name))
		}
	}
	scalarLine := fmt.Sprintf("%d", s.Scalars())
	if len(scalars) > 0 {
		scalarLine += " (" + strings.Join(scalars, ", ") + ")"
	}

	arrays := fmt.Sprintf("%d", s.Arrays)
	if s.Arrays > 0 {
		arrays += fmt.Sprintf(" (largest: %s)", plural(s.LargestArray, "item"))
	}

	label := func(l string) string { return "  " + p.Paint(theme.Label, fmt.Sprintf("%-11s", l)) }
	lines := []string{
		p.Paint(theme.Bold, "Structure"),
		label("Root:") + root,
		label("Max depth:") + fmt.Sprintf("%d", s.MaxDepth),
		label("Objects:") + fmt.Sprintf("%d nested", s.Objects),
		label("Arrays:") + arrays,
		label("Scalars:") + scalarLine,
	}
	return strings.Join(lines, "\n")
}

func jsonKind(v gjson.Result) string {
	switch {
	case v.IsObject():
		return "object"
	case v.IsArray():
		return "array"
	case v.Type == gjson.String:
		return "string"
	case v.Type == gjson.Number:
		return "number"
	case v.Type == gjson.True, v.Type == gjson.False:
		return "boolean"
	default:
		return "null"
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

type jsonPrinter struct {
	p        *theme.Palette
	maxDepth int
	preview  int
	compact  bool
}

func (j jsonPrinter) write(b *strings.Builder, v gjson.Result, depth int) {
	switch {
	case v.IsObject():
		if depth > j.maxDepth {
			b.WriteString(j.p.Paint(theme.String, maxDepthMarker))
			return
		}
		var keys, values []gjson.Result
		v.ForEach(func(k, val gjson.Result) bool {
			keys = append(keys, k)
			values = append(values, val)
			return true
		})
		if len(keys) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{")
		for i := range keys {
			if i > 0 {
				b.WriteString(",")
			}
			j.newline(b, depth+1)
			b.WriteString(j.p.Paint(theme.Key, keys[i].Raw))
			b.WriteString(": ")
			j.write(b, values[i], depth+1)
		}
		j.newline(b, depth)
		b.WriteString("}")

	case v.IsArray():
		if depth > j.maxDepth {
			b.WriteString(j.p.Paint(theme.String, maxDepthMarker))
			return
		}
		items := v.Array()
		if len(items) == 0 {
			b.WriteString("[]")
			return
		}
		shown := items
		if j.preview > 0 && len(items) > j.preview {
			shown = items[:j.preview]
		}
		b.WriteString("[")
		for i, item := range shown {
			if i > 0 {
				b.WriteString(",")
			}
			j.newline(b, depth+1)
			j.write(b, item, depth+1)
		}
		if rest := len(items) - len(shown); rest > 0 {
			j.newline(b, depth+1)
			b.WriteString(j.p.Paint(theme.Dim, fmt.Sprintf("… %d more items", rest)))
		}
		j.newline(b, depth)
		b.WriteString("]")

	case v.Type == gjson.String:
		b.WriteString(j.p.Paint(theme.String, v.Raw))
	case v.Type == gjson.Number:
		b.WriteString(j.p.Paint(theme.Number, v.Raw))
	case v.Type == gjson.True, v.Type == gjson.False:
		b.WriteString(j.p.Paint(theme.Bool, v.Raw))
	default:
		b.WriteString(j.p.Paint(theme.Null, "null"))
	}
}

func (j jsonPrinter) newline(b *strings.Builder, depth int) {
	if j.compact {
		b.WriteString(" ")
		return
	}
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("  ", depth))
}

// InvalidJSON reports a parse failure with its position, the surrounding
// context and a raw preview.
func InvalidJSON(content []byte, err error, p *theme.Palette) string {
	var b strings.Builder
	b.WriteString(p.Paint(theme.Error, "Invalid JSON: "+err.Error()))
	b.WriteByte('\n')

	var syn *json.SyntaxError
	if errors.As(err, &syn) && len(content) > 0 {
		line, col, text := errorContext(content, int(syn.Offset))
		b.WriteString(p.Paint(theme.Label, fmt.Sprintf("Line %d, column %d", line, col)))
		b.WriteString("\n\n")

		runes := []rune(text)
		start := min(max(0, col-1-jsonContextRadius), len(runes))
		end := min(len(runes), start+2*jsonContextRadius)
		window := strings.ReplaceAll(string(runes[start:end]), "\t", " ")
		b.WriteString("  " + window + "\n")
		b.WriteString("  " + strings.Repeat(" ", max(col-1-start, 0)) + p.Paint(theme.Error, "▲"))
		b.WriteByte('\n')
	}

	raw := strings.ToValidUTF8(string(content), "�")
	if utf8.RuneCountInString(raw) > jsonRawPreview {
		raw = string([]rune(raw)[:jsonRawPreview])
	}
	b.WriteByte('\n')
	b.WriteString(p.Paint(theme.Label, fmt.Sprintf("Raw content (first %d characters):", jsonRawPreview)))
	b.WriteByte('\n')
	b.WriteString(raw)
	return b.String()
}

// errorContext maps a decoder offset to a 1-based line and column and
// returns the text of that line. The decoder reports the offset after the
// offending byte.
func errorContext(content []byte, offset int) (line, col int, text string) {
	idx := min(max(offset-1, 0), len(content)-1)

	before := content[:idx]
	line = bytes.Count(before, []byte("\n")) + 1
	start := bytes.LastIndexByte(before, '\n') + 1

	end := bytes.IndexByte(content[start:], '\n')
	if end < 0 {
		end = len(content)
	} else {
		end += start
	}

	col = utf8.RuneCount(content[start:idx]) + 1
	text = strings.ToValidUTF8(strings.TrimRight(string(content[start:end]), "\r"), "�")
	return line, col, text
}
