package render

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/layout"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/theme"
)

// Violation describes input that exceeds a ceiling.
type Violation struct {
	Size  int64
	Lines int

	// Kind is "bytes" or "lines".
	Kind string
}

// Check measures content against the limits. The content length is the
// source of truth; meta.Size is used only when content is nil.
func (l Limits) Check(content []byte, meta Metadata) (Violation, bool) {
	size := int64(len(content))
	if content == nil {
		size = meta.Size
	}
	if l.MaxBytes > 0 && size > l.MaxBytes {
		return Violation{Size: size, Kind: "bytes"}, true
	}
	if l.MaxLines > 0 && content != nil {
		if n := CountLines(content); n > l.MaxLines {
			return Violation{Size: size, Lines: n, Kind: "lines"}, true
		}
	}
	return Violation{}, false
}

// CountLines counts lines, treating a trailing newline as a terminator.
func CountLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := bytes.Count(content, []byte{'\n'})
	if content[len(content)-1] != '\n' {
		n++
	}
	return n
}

// AlternativeCommand expands the suggestion for filename.
func (l Limits) AlternativeCommand(filename string) string {
	alt := l.Alternative
	if alt == "" {
		alt = "less %s"
	}
	if strings.Contains(alt, "%s") {
		return fmt.Sprintf(alt, filename)
	}
	return alt + " " + filename
}

// OversizeWarning is the boxed notice substituted for oversized input.
func OversizeWarning(filename string, v Violation, l Limits, opts Options) string {
	p := theme.For(opts.ColorOutput)
	label := func(s string) string { return p.Paint(theme.Label, fmt.Sprintf("%-7s", s)) }

	lines := []string{
		label("File:") + filepath.Base(filename),
		label("Size:") + fmt.Sprintf("%s (%d bytes)", FormatSize(v.Size), v.Size),
	}
	if v.Kind == "lines" {
		lines = append(lines,
			label("Lines:")+fmt.Sprintf("%d", v.Lines),
			label("Limit:")+fmt.Sprintf("%d lines", l.MaxLines))
	} else {
		lines = append(lines, label("Limit:")+FormatSize(l.MaxBytes))
	}
	lines = append(lines, label("Try:")+p.Paint(theme.Accent, l.AlternativeCommand(filename)))

	return layout.WarningBox("File too large to render", lines, opts.MaxWidth, p)
}

// FormatSize formats a byte count using binary units.
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 4; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTP"[exp])
}
