// Package render defines the renderer contract and the registry that picks
// a renderer for a file, guards it against oversized input and degrades to
// a fallback rendering when nothing else applies.
package render

import (
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/filetype"
)

// DefaultMaxWidth is the column budget used when none is configured.
const DefaultMaxWidth = 80

// Renderer turns file content into ANSI-styled terminal text.
type Renderer interface {
	// Name returns the renderer's unique identifier.
	Name() string

	// CanRender reports whether the renderer accepts tag.
	CanRender(tag filetype.Tag) bool

	// Priority orders candidates for a tag; higher wins.
	Priority() int

	// Limits returns the input ceilings checked before Render is called.
	Limits() Limits

	// Render transforms content. It must not perform I/O and must not
	// retain state between calls. A returned error makes the registry
	// use the fallback rendering instead.
	Render(content []byte, filename string, meta Metadata, opts Options) (string, error)
}

// OversizeRenderer is implemented by renderers that draw their own
// placeholder for input over their ceiling.
type OversizeRenderer interface {
	RenderOversize(filename string, size int64, opts Options) string
}

// Metadata describes the file being rendered. Every field is optional.
type Metadata struct {
	Path     string
	Size     int64
	MIMEType string
	ModTime  time.Time
}

// Options are per-call rendering options.
type Options struct {
	// MaxWidth is the wrapping and column budget.
	MaxWidth int

	// ColorOutput enables ANSI escapes. When false no escapes are emitted.
	ColorOutput bool

	// ShowMetadata prefixes a metadata header.
	ShowMetadata bool

	// LineNumbers enables line numbers in source code.
	LineNumbers bool

	// Interactive is reserved; no renderer branches on it.
	Interactive bool
}

// DefaultOptions returns the default rendering options.
func DefaultOptions() Options {
	return Options{
		MaxWidth:    DefaultMaxWidth,
		ColorOutput: true,
	}
}

// Normalize replaces a non-positive width with the default.
func (o Options) Normalize() Options {
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultMaxWidth
	}
	return o
}

// OptionsFromMap builds Options from loosely typed settings such as flag or
// config maps. Keys match case-insensitively with or without underscores.
// Unknown keys and unconvertible values are ignored.
func OptionsFromMap(m map[string]any) Options {
	opts := DefaultOptions()
	for key, value := range m {
		switch strings.ToLower(strings.ReplaceAll(key, "_", "")) {
		case "maxwidth", "width":
			if v, err := cast.ToIntE(value); err == nil {
				opts.MaxWidth = v
			}
		case "coloroutput", "color":
			if v, err := cast.ToBoolE(value); err == nil {
				opts.ColorOutput = v
			}
		case "showmetadata", "metadata":
			if v, err := cast.ToBoolE(value); err == nil {
				opts.ShowMetadata = v
			}
		case "linenumbers":
			if v, err := cast.ToBoolE(value); err == nil {
				opts.LineNumbers = v
			}
		case "interactive":
			if v, err := cast.ToBoolE(value); err == nil {
				opts.Interactive = v
			}
		}
	}
	return opts.Normalize()
}

// Limits are a renderer's input ceilings. Zero values mean unlimited.
type Limits struct {
	MaxBytes int64
	MaxLines int

	// Alternative is a suggested external command for oversized input.
	// A %s verb is replaced with the filename.
	Alternative string
}
