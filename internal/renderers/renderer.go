// Package renderers implements the content renderers and assembles them
// into a render.Registry.
package renderers

import (
	"log/slog"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/filetype"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/render"
)

// Size ceilings shared by several renderers.
const (
	MB = 1024 * 1024

	DefaultDocumentMaxBytes = 1 * MB
)

// base carries the identity and ceilings every renderer declares.
type base struct {
	name     string
	priority int
	tags     map[filetype.Tag]bool
	limits   render.Limits
}

func newBase(name string, priority int, limits render.Limits, tags ...filetype.Tag) base {
	set := make(map[filetype.Tag]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	return base{name: name, priority: priority, tags: set, limits: limits}
}

// Name returns the renderer's unique identifier.
func (b base) Name() string { return b.name }

// Priority returns the renderer's candidate priority.
func (b base) Priority() int { return b.priority }

// Limits returns the renderer's input ceilings.
func (b base) Limits() render.Limits { return b.limits }

// CanRender reports whether tag is one of the renderer's tags.
func (b base) CanRender(tag filetype.Tag) bool { return b.tags[tag] }

// Tags returns the renderer's tags in filetype.AllTags order.
func (b base) Tags() []filetype.Tag {
	out := make([]filetype.Tag, 0, len(b.tags))
	for _, t := range filetype.AllTags() {
		if b.tags[t] {
			out = append(out, t)
		}
	}
	return out
}

// Tagged is implemented by every renderer in this package.
type Tagged interface {
	render.Renderer
	Tags() []filetype.Tag
}

// Config holds per-renderer settings.
type Config struct {
	Markdown MarkdownConfig
	JSON     JSONConfig
	CSV      CSVConfig
	Binary   BinaryConfig
	Archive  ArchiveConfig
	Code     CodeConfig
}

// MarkdownConfig selects the Markdown engine.
type MarkdownConfig struct {
	// Engine is "native" or "glamour".
	Engine string

	// GlamourStyle is "dark", "light" or "notty".
	GlamourStyle string
}

// JSONConfig bounds the JSON tree.
type JSONConfig struct {
	MaxDepth     int
	ArrayPreview int
}

// CSVConfig bounds the CSV table.
type CSVConfig struct {
	MaxRows      int
	MaxColumns   int
	MaxCellWidth int
}

// BinaryConfig shapes the hex dump.
type BinaryConfig struct {
	BytesPerLine int
	MaxBytes     int
}

// ArchiveConfig shapes the archive listing.
type ArchiveConfig struct {
	MaxEntries int
	ShowHidden bool
}

// CodeConfig controls source code layout.
type CodeConfig struct {
	Wrap bool
}

// Engine names.
const (
	EngineNative  = "native"
	EngineGlamour = "glamour"
)

// DefaultConfig returns the default renderer settings.
func DefaultConfig() Config {
	return Config{
		Markdown: MarkdownConfig{Engine: EngineNative, GlamourStyle: "dark"},
		JSON:     JSONConfig{MaxDepth: DefaultJSONMaxDepth, ArrayPreview: DefaultJSONArrayPreview},
		CSV:      CSVConfig{MaxRows: DefaultCSVMaxRows, MaxColumns: DefaultCSVMaxColumns, MaxCellWidth: DefaultCSVMaxCellWidth},
		Binary:   BinaryConfig{BytesPerLine: DefaultBytesPerLine, MaxBytes: DefaultHexBytes},
		Archive:  ArchiveConfig{MaxEntries: DefaultArchiveMaxEntries},
		Code:     CodeConfig{Wrap: true},
	}
}

// All returns every renderer configured by cfg, in registration order.
func All(cfg Config) []Tagged {
	all := make([]Tagged, 0, 12)
	if cfg.Markdown.Engine == EngineGlamour {
		all = append(all, NewGlamourRenderer(WithGlamourStyle(cfg.Markdown.GlamourStyle)))
	}
	all = append(all,
		NewMarkdownRenderer(),
		NewJSONRenderer(WithMaxDepth(cfg.JSON.MaxDepth), WithArrayPreview(cfg.JSON.ArrayPreview)),
		NewYAMLRenderer(),
		NewTOMLRenderer(),
		NewCSVRenderer(WithMaxRows(cfg.CSV.MaxRows), WithMaxColumns(cfg.CSV.MaxColumns), WithMaxCellWidth(cfg.CSV.MaxCellWidth)),
		NewHTMLRenderer(),
		NewCodeRenderer(WithWrap(cfg.Code.Wrap)),
		NewBinaryRenderer(WithBytesPerLine(cfg.Binary.BytesPerLine), WithHexBytes(cfg.Binary.MaxBytes)),
		NewArchiveRenderer(WithMaxEntries(cfg.Archive.MaxEntries), WithShowHidden(cfg.Archive.ShowHidden)),
		NewImageRenderer(),
		NewTextRenderer(),
	)
	return all
}

// NewRegistry builds a registry holding every renderer configured by cfg.
func NewRegistry(cfg Config, logger *slog.Logger) *render.Registry {
	b := render.NewBuilder(render.WithLogger(logger))
	for _, r := range All(cfg) {
		b.Register(r, r.Tags()...)
	}
	return b.Build()
}

// DefaultRegistry builds a registry with the default settings.
func DefaultRegistry() *render.Registry {
	return NewRegistry(DefaultConfig(), nil)
}
