package renderers

import (
	"bytes"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/filetype"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/render"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/theme"
)

var (
	yamlErrLine   = regexp.MustCompile(`line (\d+)`)
	yamlErrColumn = regexp.MustCompile(`column (\d+)`)
	yamlKeyLine   = regexp.MustCompile(`^(\s*)(- )?("[^"]*"|'[^']*'|[^\s#"'][^:#]*?):(\s+|$)(.*)$`)
	yamlItemLine  = regexp.MustCompile(`^(\s*)- (.*)$`)
	yamlNumber    = regexp.MustCompile(`^[-+]?(?:\d[\d_]*(?:\.\d*)?|\.\d+)(?:[eE][-+]?\d+)?$|^0x[0-9a-fA-F]+$|^0o[0-7]+$|^[-+]?\.(?:inf|Inf|INF)$|^\.(?:nan|NaN|NAN)$`)
)

// YAMLRenderer renders YAML documents, keeping key order.
type YAMLRenderer struct {
	base
}

// NewYAMLRenderer creates a YAMLRenderer.
func NewYAMLRenderer() *YAMLRenderer {
	return &YAMLRenderer{
		base: newBase("yaml", 100, render.Limits{
			MaxBytes:    DefaultDocumentMaxBytes,
			Alternative: "yq . %s",
		}, filetype.YAML),
	}
}

// Render renders every document in content. Parse errors are reported in
// the output, followed by a heuristic highlight of the source.
func (r *YAMLRenderer) Render(content []byte, _ string, _ render.Metadata, opts render.Options) (string, error) {
	opts = opts.Normalize()
	p := theme.For(opts.ColorOutput)

	dec := yaml.NewDecoder(bytes.NewReader(content))
	var docs []*yaml.Node
	for {
		var n yaml.Node
		err := dec.Decode(&n)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return yamlParseError(content, err, p), nil
		}
		docs = append(docs, &n)
	}

	if len(docs) == 0 {
		return p.Paint(theme.Dim, "(empty document)"), nil
	}

	y := yamlPrinter{p: p}
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		parts = append(parts, strings.Join(y.document(d), "\n"))
	}
	return strings.Join(parts, "\n"+p.Paint(theme.Dim, "---")+"\n"), nil
}

type yamlPrinter struct {
	p *theme.Palette
}

func (y yamlPrinter) document(doc *yaml.Node) []string {
	lines := y.comments(doc.HeadComment, 0)
	if len(doc.Content) == 0 {
		return append(lines, y.p.Paint(theme.Null, "null"))
	}
	root := doc.Content[0]
	lines = append(lines, y.comments(root.HeadComment, 0)...)
	if s, ok := y.inline(root); ok {
		return append(lines, s)
	}
	if isBlockScalar(root) {
		return append(lines, y.blockScalar(root, "", 0)...)
	}
	return append(lines, y.block(root, 0)...)
}

// block renders a non-empty mapping or sequence at indent.
func (y yamlPrinter) block(n *yaml.Node, indent int) []string {
	if n.Kind == yaml.MappingNode {
		return y.mapping(n, indent)
	}
	return y.sequence(n, indent)
}

func (y yamlPrinter) mapping(n *yaml.Node, indent int) []string {
	pad := strings.Repeat(" ", indent)
	var lines []string
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		lines = append(lines, y.comments(k.HeadComment, indent)...)

		head := pad + y.key(k) + ":"
		switch {
		case isBlockScalar(v):
			lines = append(lines, y.blockScalar(v, head, indent+2)...)
			continue
		default:
			if s, ok := y.inline(v); ok {
				lines = append(lines, head+" "+s+y.lineComment(k, v))
				continue
			}
		}

		if v.Anchor != "" {
			head += " " + y.p.Paint(theme.Dim, "&"+v.Anchor)
		}
		lines = append(lines, head+y.lineComment(k, nil))
		lines = append(lines, y.block(v, indent+2)...)
	}
	return lines
}

func (y yamlPrinter) sequence(n *yaml.Node, indent int) []string {
	pad := strings.Repeat(" ", indent)
	marker := y.p.Paint(theme.Dim, "-") + " "
	var lines []string
	for _, item := range n.Content {
		lines = append(lines, y.comments(item.HeadComment, indent)...)
		if s, ok := y.inline(item); ok {
			lines = append(lines, pad+marker+s+y.lineComment(item, nil))
			continue
		}
		if isBlockScalar(item) {
			lines = append(lines, y.blockScalar(item, pad+marker[:len(marker)-1], indent+2)...)
			continue
		}

		sub := y.block(item, indent+2)
		if len(sub) == 0 {
			continue
		}
		// The first child line moves up beside the marker.
		first := strings.TrimPrefix(sub[0], strings.Repeat(" ", indent+2))
		sub[0] = pad + marker + first
		lines = append(lines, sub...)
	}
	return lines
}

// inline renders n on one line when it can be.
func (y yamlPrinter) inline(n *yaml.Node) (string, bool) {
	switch n.Kind {
	case yaml.AliasNode:
		return y.p.Paint(theme.Dim, "*"+n.Value), true
	case yaml.ScalarNode:
		if isBlockScalar(n) {
			return "", false
		}
		return y.anchor(n) + y.scalar(n), true
	case yaml.MappingNode, yaml.SequenceNode:
		if len(n.Content) == 0 || n.Style&yaml.FlowStyle != 0 {
			return y.anchor(n) + y.flow(n), true
		}
	}
	return "", false
}

func (y yamlPrinter) flow(n *yaml.Node) string {
	var parts []string
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			parts = append(parts, y.key(n.Content[i])+": "+y.flow(n.Content[i+1]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case yaml.SequenceNode:
		for _, c := range n.Content {
			parts = append(parts, y.flow(c))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case yaml.AliasNode:
		return y.p.Paint(theme.Dim, "*"+n.Value)
	default:
		return y.scalar(n)
	}
}

func (y yamlPrinter) blockScalar(n *yaml.Node, head string, indent int) []string {
	indicator := "|"
	if n.Style&yaml.FoldedStyle != 0 {
		indicator = ">"
	}
	if head != "" {
		head += " "
	}
	lines := []string{head + y.anchor(n) + y.p.Paint(theme.Dim, indicator)}
	pad := strings.Repeat(" ", indent)
	for _, l := range strings.Split(strings.TrimSuffix(n.Value, "\n"), "\n") {
		lines = append(lines, pad+y.p.Paint(theme.String, l))
	}
	return lines
}

func (y yamlPrinter) key(k *yaml.Node) string {
	text := k.Value
	switch {
	case k.Style&yaml.DoubleQuotedStyle != 0:
		text = strconv.Quote(k.Value)
	case k.Style&yaml.SingleQuotedStyle != 0:
		text = "'" + strings.ReplaceAll(k.Value, "'", "''") + "'"
	}
	return y.p.Paint(theme.Key, text)
}

func (y yamlPrinter) scalar(n *yaml.Node) string {
	switch n.ShortTag() {
	case "!!bool", "!!int", "!!float":
		return y.p.Paint(theme.Number, n.Value)
	case "!!null":
		if n.Value == "" {
			return y.p.Paint(theme.Null, "null")
		}
		return y.p.Paint(theme.Null, n.Value)
	}

	text := n.Value
	switch {
	case n.Style&yaml.DoubleQuotedStyle != 0:
		text = strconv.Quote(n.Value)
	case n.Style&yaml.SingleQuotedStyle != 0:
		text = "'" + strings.ReplaceAll(n.Value, "'", "''") + "'"
	}
	out := y.p.Paint(theme.String, text)
	if n.Tag != "" && !strings.HasPrefix(n.Tag, "!!") && n.Style&yaml.TaggedStyle != 0 {
		out = y.p.Paint(theme.Dim, n.Tag) + " " + out
	}
	return out
}

func (y yamlPrinter) anchor(n *yaml.Node) string {
	if n.Anchor == "" {
		return ""
	}
	return y.p.Paint(theme.Dim, "&"+n.Anchor) + " "
}

func (y yamlPrinter) comments(text string, indent int) []string {
	if text == "" {
		return nil
	}
	pad := strings.Repeat(" ", indent)
	var out []string
	for _, l := range strings.Split(text, "\n") {
		out = append(out, pad+y.p.Paint(theme.Comment, strings.TrimSpace(l)))
	}
	return out
}

func (y yamlPrinter) lineComment(k, v *yaml.Node) string {
	c := k.LineComment
	if v != nil && v.LineComment != "" {
		c = v.LineComment
	}
	if c == "" {
		return ""
	}
	return " " + y.p.Paint(theme.Comment, c)
}

func isBlockScalar(n *yaml.Node) bool {
	if n.Kind != yaml.ScalarNode {
		return false
	}
	return n.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0 || strings.Contains(n.Value, "\n")
}

func yamlParseError(content []byte, err error, p *theme.Palette) string {
	msg := err.Error()
	var b strings.Builder
	b.WriteString(p.Paint(theme.Error, "YAML parse error: "+msg))
	b.WriteByte('\n')

	if m := yamlErrLine.FindStringSubmatch(msg); m != nil {
		loc := "Line " + m[1]
		if c := yamlErrColumn.FindStringSubmatch(msg); c != nil {
			loc += ", column " + c[1]
		}
		b.WriteString(p.Paint(theme.Label, loc))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(HighlightYAML(string(content), p))
	return b.String()
}

// HighlightYAML colors YAML source line by line without parsing it.
func HighlightYAML(source string, p *theme.Palette) string {
	source = strings.ToValidUTF8(strings.ReplaceAll(source, "\r\n", "\n"), "�")
	lines := strings.Split(strings.TrimRight(source, "\n"), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
		case strings.HasPrefix(trimmed, "#"):
			lines[i] = p.Paint(theme.Comment, line)
		case trimmed == "---" || trimmed == "...":
			lines[i] = p.Paint(theme.Dim, line)
		case yamlKeyLine.MatchString(line):
			m := yamlKeyLine.FindStringSubmatch(line)
			lines[i] = m[1] + p.Paint(theme.Dim, m[2]) + p.Paint(theme.Key, m[3]) + ":" + m[4] + colorPlainValue(m[5], p)
		case yamlItemLine.MatchString(line):
			m := yamlItemLine.FindStringSubmatch(line)
			lines[i] = m[1] + p.Paint(theme.Dim, "-") + " " + colorPlainValue(m[2], p)
		}
	}
	return strings.Join(lines, "\n")
}

// colorPlainValue colors an unparsed scalar and any trailing comment.
func colorPlainValue(v string, p *theme.Palette) string {
	value, comment := v, ""
	if idx := strings.Index(v, " #"); idx >= 0 {
		value, comment = v[:idx], v[idx:]
	}
	return p.Paint(plainScalarRole(strings.TrimSpace(value)), value) + p.Paint(theme.Comment, comment)
}

func plainScalarRole(v string) theme.Role {
	switch strings.ToLower(v) {
	case "true", "false", "yes", "no", "on", "off":
		return theme.Number
	case "", "~", "null":
		return theme.Null
	case "|", ">", "|-", ">-", "|+", ">+":
		return theme.Dim
	}
	if yamlNumber.MatchString(v) {
		return theme.Number
	}
	return theme.String
}
