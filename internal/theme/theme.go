// Package theme provides the shared lipgloss palette used by every renderer.
//
// A Palette is bound to its own lipgloss renderer so that color output is a
// per-call decision instead of a property of the attached terminal. With
// color disabled the renderer uses the Ascii profile and emits no escapes.
package theme

import (
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ANSI colors for broad terminal compatibility.
var (
	Red     = lipgloss.Color("1")
	Green   = lipgloss.Color("2")
	Yellow  = lipgloss.Color("3")
	Blue    = lipgloss.Color("4")
	Magenta = lipgloss.Color("5")
	Cyan    = lipgloss.Color("6")
	White   = lipgloss.Color("7")
	Gray    = lipgloss.Color("8")
	Muted   = lipgloss.Color("245") // Light gray (visible on dark backgrounds)
	Bright  = lipgloss.Color("12")  // Bright blue
)

// Role names a semantic style.
type Role int

const (
	Plain Role = iota
	Keyword
	String
	Comment
	Number
	Preprocessor
	Decorator
	Builtin
	Function
	Type
	Operator
	Key
	Bool
	Null
	URL
	Path
	Dim
	Bold
	Italic
	Strike
	Code
	Border
	Label
	Accent
	Warning
	Error
	Success
	Heading1
	Heading2
	Heading3
	Heading4
	Heading5
	Heading6
)

// Palette maps roles to styles for one color setting.
type Palette struct {
	renderer  *lipgloss.Renderer
	color     bool
	styles    map[Role]lipgloss.Style
	underline map[Role]underlined
}

// underlined describes an underlined role. lipgloss underlines rune by
// rune, so these roles are written as one termenv sequence instead.
type underlined struct {
	fg   lipgloss.Color
	bold bool
}

func (u underlined) render(s string) string {
	st := termenv.ANSI256.String(s).
		Foreground(termenv.ANSI256.Color(string(u.fg))).
		Underline()
	if u.bold {
		st = st.Bold()
	}
	return st.String()
}

var (
	colorOnce sync.Once
	plainOnce sync.Once
	colorPal  *Palette
	plainPal  *Palette
)

// For returns the shared palette for the given color setting. Palettes are
// immutable and safe for concurrent use.
func For(color bool) *Palette {
	if color {
		colorOnce.Do(func() { colorPal = New(true) })
		return colorPal
	}
	plainOnce.Do(func() { plainPal = New(false) })
	return plainPal
}

// New builds a palette. Most callers should use For.
func New(color bool) *Palette {
	r := lipgloss.NewRenderer(io.Discard)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	r.SetHasDarkBackground(true)

	p := &Palette{
		renderer: r,
		color:    color,
		underline: map[Role]underlined{
			URL:      {fg: Blue},
			Heading1: {fg: Magenta, bold: true},
		},
	}
	p.styles = p.buildStyles()
	return p
}

func (p *Palette) buildStyles() map[Role]lipgloss.Style {
	base := p.NewStyle()
	fg := func(c lipgloss.Color) lipgloss.Style { return base.Foreground(c) }

	return map[Role]lipgloss.Style{
		Plain:        base,
		Keyword:      fg(Magenta),
		String:       fg(Green),
		Comment:      fg(Gray).Faint(true),
		Number:       fg(Yellow),
		Preprocessor: fg(Blue),
		Decorator:    fg(Cyan),
		Builtin:      fg(Cyan),
		Function:     fg(Blue),
		Type:         fg(Yellow).Bold(true),
		Operator:     fg(White),
		Key:          fg(Cyan),
		Bool:         fg(Magenta),
		Null:         fg(Gray),
		URL:          fg(Blue).Underline(true),
		Path:         fg(Cyan),
		Dim:          base.Faint(true),
		Bold:         base.Bold(true),
		Italic:       base.Italic(true),
		Strike:       base.Strikethrough(true),
		Code:         fg(Yellow),
		Border:       fg(Gray),
		Label:        fg(Muted),
		Accent:       fg(Bright).Bold(true),
		Warning:      fg(Yellow).Bold(true),
		Error:        fg(Red).Bold(true),
		Success:      fg(Green),
		Heading1:     fg(Magenta).Bold(true).Underline(true),
		Heading2:     fg(Cyan).Bold(true),
		Heading3:     fg(Blue).Bold(true),
		Heading4:     fg(Green).Bold(true),
		Heading5:     fg(Yellow).Bold(true),
		Heading6:     base.Bold(true),
	}
}

// Color reports whether the palette emits ANSI escapes.
func (p *Palette) Color() bool {
	return p.color
}

// Renderer returns the lipgloss renderer bound to this palette.
func (p *Palette) Renderer() *lipgloss.Renderer {
	return p.renderer
}

// NewStyle returns an empty style bound to the palette's renderer.
func (p *Palette) NewStyle() lipgloss.Style {
	return p.renderer.NewStyle().TabWidth(lipgloss.NoTabConversion)
}

// Style returns the style for role.
func (p *Palette) Style(role Role) lipgloss.Style {
	if s, ok := p.styles[role]; ok {
		return s
	}
	return p.styles[Plain]
}

// Paint applies role to s line by line. lipgloss pads multi-line input to a
// common width, so each line is styled on its own.
func (p *Palette) Paint(role Role, s string) string {
	if !p.color || s == "" || role == Plain {
		return s
	}
	style := p.Style(role)
	paint := func(s string) string { return style.Render(s) }
	if u, ok := p.underline[role]; ok {
		paint = u.render
	}
	if !strings.Contains(s, "\n") {
		return paint(s)
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = paint(line)
		}
	}
	return strings.Join(lines, "\n")
}

// Heading paints s with the heading role for level (1-6).
func (p *Palette) Heading(level int, s string) string {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return p.Paint(Heading1+Role(level-1), s)
}
