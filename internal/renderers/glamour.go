package renderers

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/filetype"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/render"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/termtext"
)

// Glamour style names.
const (
	GlamourDark  = "dark"
	GlamourLight = "light"
	GlamourNoTTY = "notty"
)

// GlamourRenderer renders Markdown with glamour. It outranks the native
// engine when registered.
type GlamourRenderer struct {
	base
	style string
}

// GlamourRendererOption configures the GlamourRenderer.
type GlamourRendererOption func(*GlamourRenderer)

// WithGlamourStyle selects a standard glamour style.
func WithGlamourStyle(style string) GlamourRendererOption {
	return func(r *GlamourRenderer) {
		switch style {
		case GlamourDark, GlamourLight, GlamourNoTTY:
			r.style = style
		}
	}
}

// NewGlamourRenderer creates a GlamourRenderer.
func NewGlamourRenderer(opts ...GlamourRendererOption) *GlamourRenderer {
	r := &GlamourRenderer{
		base: newBase("glamour", 110, render.Limits{
			MaxBytes:    DefaultDocumentMaxBytes,
			Alternative: "less %s",
		}, filetype.Markdown),
		style: GlamourDark,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render renders Markdown through a fresh glamour renderer, since a
// TermRenderer must not be shared between goroutines.
func (r *GlamourRenderer) Render(content []byte, _ string, _ render.Metadata, opts render.Options) (string, error) {
	opts = opts.Normalize()

	style, profile := r.style, termenv.ANSI256
	if !opts.ColorOutput {
		style, profile = GlamourNoTTY, termenv.Ascii
	}

	tr, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithColorProfile(profile),
		glamour.WithWordWrap(opts.MaxWidth),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create glamour renderer; %w", err)
	}

	out, err := tr.Render(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to render markdown; %w", err)
	}
	if !opts.ColorOutput {
		// Some glamour elements bypass the color profile.
		out = termtext.Strip(out)
	}
	return strings.Trim(out, "\n"), nil
}
