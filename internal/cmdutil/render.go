// Package cmdutil holds the plumbing shared by the r3x commands: render
// flag resolution, registry construction and path handling.
package cmdutil

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/config"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/render"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/renderers"
)

// FallbackWidth is used when neither flags, config nor the terminal give a
// width.
const FallbackWidth = render.DefaultMaxWidth

// RenderFlags are the render flags shared by cat and view.
type RenderFlags struct {
	Width       int
	Color       string
	NoColor     bool
	Metadata    bool
	LineNumbers bool
}

// Register adds the render flags to cmd.
func (f *RenderFlags) Register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.IntVarP(&f.Width, "width", "w", 0, "Maximum output width (0 uses the terminal width)")
	flags.StringVar(&f.Color, "color", "", "Color output: auto, always or never")
	flags.Lookup("color").NoOptDefVal = config.ColorAlways
	flags.BoolVar(&f.NoColor, "no-color", false, "Disable color output")
	flags.BoolVarP(&f.Metadata, "metadata", "m", false, "Prefix output with a metadata header")
	flags.BoolVarP(&f.LineNumbers, "line-numbers", "n", false, "Number lines in source code")
	cmd.MarkFlagsMutuallyExclusive("color", "no-color")
}

// Validate checks flag values that cobra cannot.
func (f *RenderFlags) Validate() error {
	if f.Width < 0 {
		return fmt.Errorf("width must be non-negative; got %d", f.Width)
	}
	switch strings.ToLower(f.Color) {
	case "", config.ColorAuto, config.ColorAlways, config.ColorNever:
		return nil
	default:
		return fmt.Errorf("invalid color mode %q; must be auto, always or never", f.Color)
	}
}

// Options resolves rendering options for output written to out. A flag
// only overrides the configured value when it was set on the command line.
func (f *RenderFlags) Options(cmd *cobra.Command, cfg *config.Config, out io.Writer) render.Options {
	flags := cmd.Flags()

	mode := cfg.Render.Color
	if flags.Changed("color") {
		mode = strings.ToLower(f.Color)
	}
	if f.NoColor {
		mode = config.ColorNever
	}

	width := cfg.Render.MaxWidth
	if flags.Changed("width") {
		width = f.Width
	}
	if width <= 0 {
		width = TerminalWidth(out)
	}

	metadata := cfg.Render.ShowMetadata
	if flags.Changed("metadata") {
		metadata = f.Metadata
	}
	lineNumbers := cfg.Render.LineNumbers
	if flags.Changed("line-numbers") {
		lineNumbers = f.LineNumbers
	}

	return render.OptionsFromMap(map[string]any{
		"max_width":     width,
		"color_output":  ColorEnabled(mode, out),
		"show_metadata": metadata,
		"line_numbers":  lineNumbers,
		"interactive":   IsTerminal(out),
	})
}

// ColorEnabled resolves a color mode against the output. In auto mode
// color is used only on a terminal and only when NO_COLOR is unset.
func ColorEnabled(mode string, out io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return IsTerminal(out)
}

// IsTerminal reports whether stream is a terminal. Only *os.File values
// can be.
func IsTerminal(stream any) bool {
	f, ok := stream.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// TerminalWidth returns the width of the terminal behind w, or
// FallbackWidth when w is not a terminal.
func TerminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return FallbackWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return FallbackWidth
	}
	return width
}

// NewRegistry builds the renderer registry from cfg.
func NewRegistry(cfg *config.Config, logger *slog.Logger) *render.Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return renderers.NewRegistry(cfg.RendererConfig(), logger.With("component", "render"))
}
