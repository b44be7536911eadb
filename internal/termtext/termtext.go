// Package termtext measures, wraps and truncates terminal text. All widths
// are visible cell widths with ANSI escape sequences excluded.
package termtext

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// BreakPercent is the share of the width budget a soft break must reach.
const BreakPercent = 70

// Width returns the visible width of s.
func Width(s string) int {
	return ansi.StringWidth(s)
}

// Strip removes ANSI escape sequences from s.
func Strip(s string) string {
	return ansi.Strip(s)
}

// Wrap word-wraps s to width, hard-breaking words longer than width.
// Existing newlines are kept. A non-positive width disables wrapping.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wrap.String(wordwrap.String(s, width), width)
}

// WrapLines is Wrap returning the resulting lines.
func WrapLines(s string, width int) []string {
	return strings.Split(Wrap(s, width), "\n")
}

// Truncate shortens s, which may contain ANSI escapes, to width cells
// including a trailing ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if Width(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, Ellipsis)
}

// TruncatePlain shortens plain text to width cells including an ellipsis.
func TruncatePlain(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, Ellipsis)
}

// PadRight pads s with spaces to width visible cells.
func PadRight(s string, width int) string {
	if w := Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// PadLeft pads s on the left with spaces to width visible cells.
func PadLeft(s string, width int) string {
	if w := Width(s); w < width {
		return strings.Repeat(" ", width-w) + s
	}
	return s
}

// Center pads s on both sides to width visible cells.
func Center(s string, width int) string {
	w := Width(s)
	if w >= width {
		return s
	}
	left := (width - w) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-w-left)
}

// BreakPoints returns the rune offsets at which plain line should be split
// so that no segment exceeds budget cells. Each break falls after the last
// whitespace or punctuation rune whose column reaches BreakPercent of the
// budget; without such a boundary the break is hard at the budget.
func BreakPoints(line string, budget int) []int {
	if budget <= 0 {
		return nil
	}
	runes := []rune(line)
	minCol := (budget*BreakPercent + 99) / 100

	var cuts []int
	start := 0
	for start < len(runes) {
		width, end := 0, start
		for end < len(runes) {
			rw := runewidth.RuneWidth(runes[end])
			if width+rw > budget {
				break
			}
			width += rw
			end++
		}
		if end >= len(runes) {
			break
		}
		if end == start {
			end = start + 1
		}

		cut := end
		col := width
		for i := end; i > start; i-- {
			if col < minCol {
				break
			}
			if isBoundary(runes[i-1]) {
				cut = i
				break
			}
			col -= runewidth.RuneWidth(runes[i-1])
		}
		cuts = append(cuts, cut)
		start = cut
	}
	return cuts
}

// SplitAt splits s at the given rune offsets.
func SplitAt(s string, cuts []int) []string {
	if len(cuts) == 0 {
		return []string{s}
	}
	runes := []rune(s)
	parts := make([]string, 0, len(cuts)+1)
	prev := 0
	for _, c := range cuts {
		parts = append(parts, string(runes[prev:c]))
		prev = c
	}
	return append(parts, string(runes[prev:]))
}

func isBoundary(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
}
