package layout

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/termtext"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/theme"
)

// BoxSpec describes a bordered box.
type BoxSpec struct {
	// Title is drawn inside the top border.
	Title string

	// Lines is the box content. Lines wider than the box are truncated.
	Lines []string

	// Width is the outer width. Zero fits the content.
	Width int

	// Height is the minimum number of content lines.
	Height int

	// Border defaults to lipgloss.NormalBorder.
	Border lipgloss.Border

	// Role colors the border.
	Role theme.Role

	// Center centers each content line.
	Center bool
}

// Box draws spec.
func Box(spec BoxSpec, p *theme.Palette) string {
	border := spec.Border
	if border.Top == "" {
		border = lipgloss.NormalBorder()
	}
	role := spec.Role
	if role == theme.Plain {
		role = theme.Border
	}

	lines := spec.Lines
	for len(lines) < spec.Height {
		if spec.Center {
			// Keep content vertically centered by padding both ends.
			if (spec.Height-len(lines))%2 == 0 {
				lines = append([]string{""}, lines...)
				continue
			}
		}
		lines = append(lines, "")
	}

	inner := spec.Width - 2
	if spec.Width <= 0 {
		inner = termtext.Width(spec.Title) + 4
		for _, l := range lines {
			if w := termtext.Width(l) + 2; w > inner {
				inner = w
			}
		}
	}
	if inner < 4 {
		inner = 4
	}
	content := inner - 2

	var b strings.Builder

	top := border.Top
	if spec.Title != "" {
		title := termtext.Truncate(spec.Title, inner-4)
		fill := inner - termtext.Width(title) - 3
		b.WriteString(p.Paint(role, border.TopLeft+top+" "))
		b.WriteString(title)
		b.WriteString(p.Paint(role, " "+strings.Repeat(top, max(fill, 0))+border.TopRight))
	} else {
		b.WriteString(p.Paint(role, border.TopLeft+strings.Repeat(top, inner)+border.TopRight))
	}
	b.WriteByte('\n')

	left := p.Paint(role, border.Left)
	right := p.Paint(role, border.Right)
	for _, l := range lines {
		l = termtext.Truncate(l, content)
		if spec.Center {
			l = termtext.Center(l, content)
		}
		b.WriteString(left)
		b.WriteByte(' ')
		b.WriteString(termtext.PadRight(l, content))
		b.WriteByte(' ')
		b.WriteString(right)
		b.WriteByte('\n')
	}

	b.WriteString(p.Paint(role, border.BottomLeft+strings.Repeat(border.Bottom, inner)+border.BottomRight))
	return b.String()
}

// CodeBox draws pre-highlighted code lines in a box labelled with lang,
// no wider than width.
func CodeBox(lines []string, lang string, width int, p *theme.Palette) string {
	widest := termtext.Width(lang) + 4
	for _, l := range lines {
		if w := termtext.Width(l); w > widest {
			widest = w
		}
	}
	outer := widest + 4
	if width > 0 && outer > width {
		outer = width
	}
	title := ""
	if lang != "" {
		title = p.Paint(theme.Label, lang)
	}
	return Box(BoxSpec{Title: title, Lines: lines, Width: outer}, p)
}

// WarningBox draws a rounded warning box with a bold title line.
func WarningBox(title string, lines []string, width int, p *theme.Palette) string {
	body := append([]string{p.Paint(theme.Warning, "⚠ "+title), ""}, lines...)
	outer := 0
	for _, l := range body {
		if w := termtext.Width(l) + 4; w > outer {
			outer = w
		}
	}
	if width > 0 && outer > width {
		outer = width
	}
	return Box(BoxSpec{
		Lines:  body,
		Width:  outer,
		Border: lipgloss.RoundedBorder(),
		Role:   theme.Warning,
	}, p)
}

// Rule returns a horizontal rule width cells wide.
func Rule(width int, p *theme.Palette) string {
	if width <= 0 {
		width = 1
	}
	return p.Paint(theme.Border, strings.Repeat("─", width))
}
