// Package layout draws the boxes, rules and tables shared by renderers.
package layout

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/termtext"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/theme"
)

// Align is a column alignment.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// TableSpec describes a table to draw.
type TableSpec struct {
	// Header is the header row. A nil header draws a headerless table.
	Header []string

	// Rows holds the body cells. Short rows are padded with empty cells.
	Rows [][]string

	// MaxCellWidth caps every column; longer cells end in an ellipsis.
	// Zero disables truncation.
	MaxCellWidth int

	// Align holds per-column alignment. Missing entries are left aligned.
	Align []Align
}

// Columns returns the column count of the spec.
func (s TableSpec) Columns() int {
	n := len(s.Header)
	for _, row := range s.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// minFitWidth is the narrowest cell Fit will produce.
const minFitWidth = 3

// Fit returns a copy of s whose MaxCellWidth keeps the drawn table within
// width cells. Tables that already fit are returned unchanged.
func (s TableSpec) Fit(width int) TableSpec {
	cols := s.Columns()
	if cols == 0 || width <= 0 {
		return s
	}
	if s.naturalWidth() <= width {
		return s
	}
	// Each column costs its content plus two padding cells and a border.
	cell := max((width-1)/cols-3, minFitWidth)
	if s.MaxCellWidth == 0 || cell < s.MaxCellWidth {
		s.MaxCellWidth = cell
	}
	return s
}

func (s TableSpec) naturalWidth() int {
	cols := s.Columns()
	widths := make([]int, cols)
	measure := func(row []string) {
		for i, c := range row {
			w := termtext.Width(c)
			if s.MaxCellWidth > 0 && w > s.MaxCellWidth {
				w = s.MaxCellWidth
			}
			if w > widths[i] {
				widths[i] = w
			}
		}
	}
	measure(s.Header)
	for _, row := range s.Rows {
		measure(row)
	}
	total := 1
	for _, w := range widths {
		total += w + 3
	}
	return total
}

// Table draws spec as a box-drawn table. Column width is the widest cell
// after truncation, header cells are bold and borders use the border role.
func Table(spec TableSpec, p *theme.Palette) string {
	cols := spec.Columns()
	if cols == 0 {
		return ""
	}

	header := normalizeRow(spec.Header, cols, spec.MaxCellWidth)
	rows := make([][]string, len(spec.Rows))
	for i, row := range spec.Rows {
		rows[i] = normalizeRow(row, cols, spec.MaxCellWidth)
	}

	cell := p.NewStyle().Padding(0, 1)
	headerCell := cell.Bold(true)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.Style(theme.Border)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCell
			}
			if col < len(spec.Align) {
				switch spec.Align[col] {
				case AlignRight:
					return cell.Align(lipgloss.Right)
				case AlignCenter:
					return cell.Align(lipgloss.Center)
				}
			}
			return cell
		})

	if spec.Header != nil {
		t.Headers(header...)
	}
	for _, row := range rows {
		t.Row(row...)
	}

	return t.String()
}

func normalizeRow(row []string, cols, maxWidth int) []string {
	if row == nil {
		return nil
	}
	out := make([]string, cols)
	for i := 0; i < cols; i++ {
		if i >= len(row) {
			continue
		}
		c := strings.ReplaceAll(row[i], "\r", "")
		c = strings.ReplaceAll(c, "\n", " ")
		c = strings.ReplaceAll(c, "\t", " ")
		if maxWidth > 0 {
			c = termtext.Truncate(c, maxWidth)
		}
		out[i] = c
	}
	return out
}
