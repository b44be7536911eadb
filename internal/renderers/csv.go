package renderers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/filetype"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/layout"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/render"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/theme"
)

// CSV renderer defaults.
const (
	DefaultCSVMaxRows      = 100
	DefaultCSVMaxColumns   = 12
	DefaultCSVMaxCellWidth = 20

	// csvMaxWarnings stops parsing input that is mostly malformed.
	csvMaxWarnings = 1000
)

var (
	csvNumeric    = regexp.MustCompile(`^[-+]?[$€£¥]?(?:\d+|\d{1,3}(?:,\d{3})+)?(?:\.\d+)?(?:[eE][-+]?\d+)?%?$`)
	csvHeaderName = regexp.MustCompile(`(?i)(?:^|[_\s.-])(id|uuid|key|name|title|label|date|time|timestamp|created|updated|email|phone|address|city|state|country|zip|status|type|kind|category|description|value|amount|price|total|count|qty|quantity|age|url|code|score)(?:$|[_\s.-]|s$)`)
)

// CSVRenderer renders delimited tables.
type CSVRenderer struct {
	base
	maxRows      int
	maxColumns   int
	maxCellWidth int
}

// CSVRendererOption configures the CSVRenderer.
type CSVRendererOption func(*CSVRenderer)

// WithMaxRows caps the body rows shown.
func WithMaxRows(n int) CSVRendererOption {
	return func(r *CSVRenderer) {
		if n > 0 {
			r.maxRows = n
		}
	}
}

// WithMaxColumns caps the columns shown.
func WithMaxColumns(n int) CSVRendererOption {
	return func(r *CSVRenderer) {
		if n > 0 {
			r.maxColumns = n
		}
	}
}

// WithMaxCellWidth caps the width of every cell.
func WithMaxCellWidth(n int) CSVRendererOption {
	return func(r *CSVRenderer) {
		if n > 0 {
			r.maxCellWidth = n
		}
	}
}

// NewCSVRenderer creates a CSVRenderer.
func NewCSVRenderer(opts ...CSVRendererOption) *CSVRenderer {
	r := &CSVRenderer{
		base: newBase("csv", 100, render.Limits{
			MaxBytes:    DefaultDocumentMaxBytes,
			Alternative: "column -s, -t < %s | less -S",
		}, filetype.CSV, filetype.TSV),
		maxRows:      DefaultCSVMaxRows,
		maxColumns:   DefaultCSVMaxColumns,
		maxCellWidth: DefaultCSVMaxCellWidth,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CSVTable is a parsed delimited file.
type CSVTable struct {
	Delimiter rune
	HasHeader bool
	Header    []string
	Rows      [][]string
	Columns   int

	// Warnings counts malformed rows that were skipped.
	Warnings int
}

// ParseCSV parses content, choosing the delimiter from filename or the
// first line.
func ParseCSV(content []byte, filename string) (*CSVTable, error) {
	delim := DetectDelimiter(filename, content)

	cr := csv.NewReader(bytes.NewReader(content))
	cr.Comma = delim
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	t := &CSVTable{Delimiter: delim}
	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) && t.Warnings < csvMaxWarnings {
				t.Warnings++
				continue
			}
			return nil, fmt.Errorf("failed to parse delimited data; %w", err)
		}
		records = append(records, rec)
		t.Columns = max(t.Columns, len(rec))
	}

	if len(records) > 0 && HasHeader(records) {
		t.HasHeader = true
		t.Header = records[0]
		records = records[1:]
	}
	t.Rows = records
	return t, nil
}

// DetectDelimiter picks the delimiter by extension, then by the most
// frequent candidate in the first line.
func DetectDelimiter(filename string, content []byte) rune {
	switch filetype.Extension(filename) {
	case ".csv":
		return ','
	case ".tsv", ".tab":
		return '\t'
	case ".psv":
		return '|'
	}

	first := content
	if idx := bytes.IndexByte(content, '\n'); idx >= 0 {
		first = content[:idx]
	}
	best, count := ',', 0
	for _, c := range []rune{',', '\t', ';', '|'} {
		if n := bytes.Count(first, []byte(string(c))); n > count {
			best, count = c, n
		}
	}
	return best
}

// HasHeader reports whether the first record looks like a header: some
// column is text in row one and numeric in row two, or row one has no
// numbers and names a common header field.
func HasHeader(records [][]string) bool {
	if len(records) == 0 {
		return false
	}
	first := records[0]

	if len(records) > 1 {
		second := records[1]
		for i := 0; i < len(first) && i < len(second); i++ {
			a, b := strings.TrimSpace(first[i]), strings.TrimSpace(second[i])
			if a != "" && !IsNumeric(a) && IsNumeric(b) {
				return true
			}
		}
	}

	for _, c := range first {
		if IsNumeric(strings.TrimSpace(c)) {
			return false
		}
	}
	for _, c := range first {
		if csvHeaderName.MatchString(strings.TrimSpace(c)) {
			return true
		}
	}
	return false
}

// IsNumeric reports whether s is a number, allowing thousands separators,
// a currency sign and a percent suffix.
func IsNumeric(s string) bool {
	return s != "" && strings.ContainsAny(s, "0123456789") && csvNumeric.MatchString(s)
}

// Spec converts the parsed table to a layout table within the limits.
// The returned counts are the rows and columns left out.
func (t *CSVTable) Spec(maxRows, maxColumns, maxCellWidth int) (spec layout.TableSpec, hiddenRows, hiddenCols int) {
	cols := t.Columns
	if maxColumns > 0 && cols > maxColumns {
		hiddenCols = cols - maxColumns
		cols = maxColumns
	}
	rows := t.Rows
	if maxRows > 0 && len(rows) > maxRows {
		hiddenRows = len(rows) - maxRows
		rows = rows[:maxRows]
	}

	clip := func(row []string) []string {
		out := make([]string, cols)
		copy(out, row)
		return out
	}

	spec.MaxCellWidth = maxCellWidth
	if t.HasHeader {
		spec.Header = clip(t.Header)
	}
	spec.Rows = make([][]string, len(rows))
	for i, row := range rows {
		spec.Rows[i] = clip(row)
	}

	spec.Align = make([]layout.Align, cols)
	for c := 0; c < cols; c++ {
		numeric, seen := true, false
		for _, row := range rows {
			if c >= len(row) || strings.TrimSpace(row[c]) == "" {
				continue
			}
			seen = true
			if !IsNumeric(strings.TrimSpace(row[c])) {
				numeric = false
				break
			}
		}
		if numeric && seen {
			spec.Align[c] = layout.AlignRight
		}
	}
	return spec, hiddenRows, hiddenCols
}

// Render draws the table with a summary footer.
func (r *CSVRenderer) Render(content []byte, filename string, _ render.Metadata, opts render.Options) (string, error) {
	opts = opts.Normalize()
	p := theme.For(opts.ColorOutput)

	if len(bytes.TrimSpace(content)) == 0 {
		return p.Paint(theme.Dim, "(empty table)"), nil
	}

	t, err := ParseCSV(content, filename)
	if err != nil {
		return "", err
	}
	if len(t.Rows) == 0 && !t.HasHeader {
		return p.Paint(theme.Dim, "(no rows)"), nil
	}

	spec, hiddenRows, hiddenCols := t.Spec(r.maxRows, r.maxColumns, r.maxCellWidth)

	var b strings.Builder
	b.WriteString(layout.Table(spec.Fit(opts.MaxWidth), p))

	if hiddenRows > 0 {
		b.WriteString("\n" + p.Paint(theme.Dim, fmt.Sprintf("… %s not shown", plural(hiddenRows, "more row"))))
	}
	if hiddenCols > 0 {
		b.WriteString("\n" + p.Paint(theme.Dim, fmt.Sprintf("… %s not shown", plural(hiddenCols, "more column"))))
	}
	if t.Warnings > 0 {
		b.WriteString("\n" + p.Paint(theme.Warning, fmt.Sprintf("%s skipped", plural(t.Warnings, "malformed row"))))
	}

	header := "no header"
	if t.HasHeader {
		header = "header detected"
	}
	footer := fmt.Sprintf("%s × %s · %s · delimiter %s",
		plural(len(t.Rows), "row"), plural(t.Columns, "column"), header, delimiterName(t.Delimiter))
	b.WriteString("\n" + p.Paint(theme.Dim, footer))
	return b.String(), nil
}

func delimiterName(d rune) string {
	switch d {
	case '\t':
		return "tab"
	case ';':
		return "semicolon"
	case '|':
		return "pipe"
	default:
		return "comma"
	}
}
