package renderers

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/filetype"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/render"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/theme"
)

var (
	tomlBareKey   = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	tomlHeader    = regexp.MustCompile(`^\s*\[\[?[^\]]*\]\]?\s*(#.*)?$`)
	tomlAssignKey = regexp.MustCompile(`^(\s*)([^=#\s][^=#]*?)(\s*=\s*)(.*)$`)
)

// TOMLRenderer renders TOML documents.
type TOMLRenderer struct {
	base
}

// NewTOMLRenderer creates a TOMLRenderer.
func NewTOMLRenderer() *TOMLRenderer {
	return &TOMLRenderer{
		base: newBase("toml", 100, render.Limits{
			MaxBytes:    DefaultDocumentMaxBytes,
			Alternative: "less %s",
		}, filetype.TOML),
	}
}

// Render decodes content and prints it with sorted keys: top-level values
// first, then tables, then arrays of tables.
func (r *TOMLRenderer) Render(content []byte, _ string, _ render.Metadata, opts render.Options) (string, error) {
	opts = opts.Normalize()
	p := theme.For(opts.ColorOutput)

	var doc map[string]any
	if err := toml.Unmarshal(content, &doc); err != nil {
		return tomlParseError(content, err, p), nil
	}
	if len(doc) == 0 {
		return p.Paint(theme.Dim, "(empty document)"), nil
	}

	t := tomlPrinter{p: p}
	t.table(nil, doc, false)
	return strings.TrimRight(strings.Join(t.lines, "\n"), "\n"), nil
}

type tomlPrinter struct {
	p     *theme.Palette
	lines []string
}

func (t *tomlPrinter) table(path []string, m map[string]any, arrayEntry bool) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var scalars, tables, arrays []string
	for _, k := range keys {
		switch v := m[k].(type) {
		case map[string]any:
			tables = append(tables, k)
		case []any:
			if isTableArray(v) {
				arrays = append(arrays, k)
			} else {
				scalars = append(scalars, k)
			}
		default:
			scalars = append(scalars, k)
		}
	}

	if len(path) > 0 && (len(scalars) > 0 || len(tables) == 0 && len(arrays) == 0 || arrayEntry) {
		if len(t.lines) > 0 {
			t.lines = append(t.lines, "")
		}
		name := tomlPath(path)
		if arrayEntry {
			t.lines = append(t.lines, t.p.Paint(theme.Accent, "[["+name+"]]"))
		} else {
			t.lines = append(t.lines, t.p.Paint(theme.Accent, "["+name+"]"))
		}
	}

	for _, k := range scalars {
		t.lines = append(t.lines, t.p.Paint(theme.Key, tomlKey(k))+" = "+t.value(m[k]))
	}
	for _, k := range tables {
		t.table(append(clonePath(path), k), m[k].(map[string]any), false)
	}
	for _, k := range arrays {
		for _, item := range m[k].([]any) {
			t.table(append(clonePath(path), k), item.(map[string]any), true)
		}
	}
}

func (t *tomlPrinter) value(v any) string {
	switch x := v.(type) {
	case string:
		return t.p.Paint(theme.String, strconv.Quote(x))
	case bool:
		return t.p.Paint(theme.Number, strconv.FormatBool(x))
	case int64:
		return t.p.Paint(theme.Number, strconv.FormatInt(x, 10))
	case float64:
		return t.p.Paint(theme.Number, formatTOMLFloat(x))
	case time.Time:
		return t.p.Paint(theme.Number, x.Format(time.RFC3339Nano))
	case toml.LocalDate, toml.LocalTime, toml.LocalDateTime:
		return t.p.Paint(theme.Number, fmt.Sprint(x))
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = t.value(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = t.p.Paint(theme.Key, tomlKey(k)) + " = " + t.value(x[k])
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	default:
		return t.p.Paint(theme.String, fmt.Sprint(x))
	}
}

func formatTOMLFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	switch s {
	case "+Inf":
		return "inf"
	case "-Inf":
		return "-inf"
	case "NaN":
		return "nan"
	}
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func isTableArray(v []any) bool {
	if len(v) == 0 {
		return false
	}
	for _, item := range v {
		if _, ok := item.(map[string]any); !ok {
			return false
		}
	}
	return true
}

func tomlKey(k string) string {
	if tomlBareKey.MatchString(k) {
		return k
	}
	return strconv.Quote(k)
}

func tomlPath(path []string) string {
	parts := make([]string, len(path))
	for i, k := range path {
		parts[i] = tomlKey(k)
	}
	return strings.Join(parts, ".")
}

func clonePath(path []string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return out
}

func tomlParseError(content []byte, err error, p *theme.Palette) string {
	var b strings.Builder
	b.WriteString(p.Paint(theme.Error, "TOML parse error: "+err.Error()))
	b.WriteByte('\n')

	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		row, col := derr.Position()
		b.WriteString(p.Paint(theme.Label, fmt.Sprintf("Line %d, column %d", row, col)))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(HighlightTOML(string(content), p))
	return b.String()
}

// HighlightTOML colors TOML source line by line without parsing it.
func HighlightTOML(source string, p *theme.Palette) string {
	source = strings.ToValidUTF8(strings.ReplaceAll(source, "\r\n", "\n"), "�")
	lines := strings.Split(strings.TrimRight(source, "\n"), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
		case strings.HasPrefix(trimmed, "#"):
			lines[i] = p.Paint(theme.Comment, line)
		case tomlHeader.MatchString(line):
			lines[i] = p.Paint(theme.Accent, line)
		case tomlAssignKey.MatchString(line):
			m := tomlAssignKey.FindStringSubmatch(line)
			lines[i] = m[1] + p.Paint(theme.Key, m[2]) + m[3] + colorPlainValue(m[4], p)
		}
	}
	return strings.Join(lines, "\n")
}
