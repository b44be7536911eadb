package renderers

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/filetype"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/layout"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/render"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/termtext"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/theme"
)

// Image placeholder geometry.
const (
	ImageMaxBytes = 5 * MB

	imageBoxWidth  = 44
	imageBoxHeight = 7
)

var imageFormats = map[string]string{
	".png":  "PNG Image",
	".jpg":  "JPEG Image",
	".jpeg": "JPEG Image",
	".gif":  "GIF Image",
	".webp": "WebP Image",
	".bmp":  "BMP Image",
	".tif":  "TIFF Image",
	".tiff": "TIFF Image",
	".ico":  "ICO Icon",
}

// ImageRenderer draws a placeholder box describing an image.
type ImageRenderer struct {
	base
}

// NewImageRenderer creates an ImageRenderer.
func NewImageRenderer() *ImageRenderer {
	return &ImageRenderer{
		base: newBase("image", 100, render.Limits{MaxBytes: ImageMaxBytes}, filetype.Image),
	}
}

// ImageFormat labels an image by extension. The leading bytes decide when
// the extension is unknown or disagrees with them.
func ImageFormat(filename string, content []byte) string {
	byExt, known := imageFormats[filetype.Extension(filename)]
	byMagic := Identify(content)
	isImage := strings.HasSuffix(byMagic, " Image") || byMagic == "ICO Icon"

	switch {
	case known && (!isImage || byMagic == byExt):
		return byExt
	case isImage:
		return byMagic
	case known:
		return byExt
	}
	return "Image"
}

// Render draws the placeholder. Dimensions come from the image header.
func (r *ImageRenderer) Render(content []byte, filename string, _ render.Metadata, opts render.Options) (string, error) {
	opts = opts.Normalize()
	p := theme.For(opts.ColorOutput)

	dims := p.Paint(theme.Dim, "dimensions unknown")
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(content)); err == nil {
		dims = fmt.Sprintf("%d × %d pixels", cfg.Width, cfg.Height)
	}

	lines := []string{
		p.Paint(theme.Accent, ImageFormat(filename, content)),
		"",
		p.Paint(theme.Bold, r.fitName(filename, opts.MaxWidth)),
		dims + p.Paint(theme.Dim, " · "+render.FormatSize(int64(len(content)))),
		"",
		p.Paint(theme.Dim, "ASCII art conversion not implemented"),
	}
	return r.box(lines, theme.Border, opts.MaxWidth, p), nil
}

// RenderOversize draws a placeholder for images over the ceiling without
// reading them.
func (r *ImageRenderer) RenderOversize(filename string, size int64, opts render.Options) string {
	opts = opts.Normalize()
	p := theme.For(opts.ColorOutput)

	lines := []string{
		p.Paint(theme.Warning, "⚠ Image too large to preview"),
		"",
		p.Paint(theme.Bold, r.fitName(filename, opts.MaxWidth)),
		render.FormatSize(size) + p.Paint(theme.Dim, " (limit "+render.FormatSize(ImageMaxBytes)+")"),
	}
	return r.box(lines, theme.Warning, opts.MaxWidth, p)
}

func (r *ImageRenderer) boxWidth(maxWidth int) int {
	if maxWidth > 0 && maxWidth < imageBoxWidth {
		return maxWidth
	}
	return imageBoxWidth
}

func (r *ImageRenderer) fitName(filename string, maxWidth int) string {
	return termtext.Truncate(filepath.Base(filename), r.boxWidth(maxWidth)-4)
}

func (r *ImageRenderer) box(lines []string, role theme.Role, maxWidth int, p *theme.Palette) string {
	return layout.Box(layout.BoxSpec{
		Lines:  lines,
		Width:  r.boxWidth(maxWidth),
		Height: imageBoxHeight,
		Border: lipgloss.RoundedBorder(),
		Role:   role,
		Center: true,
	}, p)
}
