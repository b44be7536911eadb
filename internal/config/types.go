package config

import "github.com/rexbrahh/terminal.r3x.sh-sub000/internal/renderers"

// Config is the root configuration structure for the application.
type Config struct {
	LogLevel  string          `yaml:"log_level" mapstructure:"log_level"`
	LogFile   string          `yaml:"log_file" mapstructure:"log_file"`
	Render    RenderConfig    `yaml:"render" mapstructure:"render"`
	Renderers RenderersConfig `yaml:"renderers" mapstructure:"renderers"`
}

// RenderConfig holds the per-call rendering defaults. Command line flags
// override these.
type RenderConfig struct {
	MaxWidth     int    `yaml:"max_width" mapstructure:"max_width"` // 0 = terminal width
	Color        string `yaml:"color" mapstructure:"color"`
	ShowMetadata bool   `yaml:"show_metadata" mapstructure:"show_metadata"`
	LineNumbers  bool   `yaml:"line_numbers" mapstructure:"line_numbers"`
}

// RenderersConfig holds per-renderer settings.
type RenderersConfig struct {
	Markdown MarkdownConfig `yaml:"markdown" mapstructure:"markdown"`
	JSON     JSONConfig     `yaml:"json" mapstructure:"json"`
	CSV      CSVConfig      `yaml:"csv" mapstructure:"csv"`
	Binary   BinaryConfig   `yaml:"binary" mapstructure:"binary"`
	Archive  ArchiveConfig  `yaml:"archive" mapstructure:"archive"`
	Code     CodeConfig     `yaml:"code" mapstructure:"code"`
}

// MarkdownConfig selects the Markdown engine.
type MarkdownConfig struct {
	Engine       string `yaml:"engine" mapstructure:"engine"`
	GlamourStyle string `yaml:"glamour_style" mapstructure:"glamour_style"`
}

// JSONConfig bounds the JSON tree view.
type JSONConfig struct {
	MaxDepth     int `yaml:"max_depth" mapstructure:"max_depth"`
	ArrayPreview int `yaml:"array_preview" mapstructure:"array_preview"`
}

// CSVConfig bounds the CSV table.
type CSVConfig struct {
	MaxRows      int `yaml:"max_rows" mapstructure:"max_rows"`
	MaxColumns   int `yaml:"max_columns" mapstructure:"max_columns"`
	MaxCellWidth int `yaml:"max_cell_width" mapstructure:"max_cell_width"`
}

// BinaryConfig shapes the hex dump.
type BinaryConfig struct {
	BytesPerLine int `yaml:"bytes_per_line" mapstructure:"bytes_per_line"`
	MaxBytes     int `yaml:"max_bytes" mapstructure:"max_bytes"`
}

// ArchiveConfig shapes the archive listing.
type ArchiveConfig struct {
	MaxEntries int  `yaml:"max_entries" mapstructure:"max_entries"`
	ShowHidden bool `yaml:"show_hidden" mapstructure:"show_hidden"`
}

// CodeConfig controls source code layout.
type CodeConfig struct {
	Wrap bool `yaml:"wrap" mapstructure:"wrap"`
}

// RendererConfig converts the renderers section into the settings consumed
// by renderers.NewRegistry.
func (c *Config) RendererConfig() renderers.Config {
	r := c.Renderers
	return renderers.Config{
		Markdown: renderers.MarkdownConfig{Engine: r.Markdown.Engine, GlamourStyle: r.Markdown.GlamourStyle},
		JSON:     renderers.JSONConfig{MaxDepth: r.JSON.MaxDepth, ArrayPreview: r.JSON.ArrayPreview},
		CSV: renderers.CSVConfig{
			MaxRows:      r.CSV.MaxRows,
			MaxColumns:   r.CSV.MaxColumns,
			MaxCellWidth: r.CSV.MaxCellWidth,
		},
		Binary:  renderers.BinaryConfig{BytesPerLine: r.Binary.BytesPerLine, MaxBytes: r.Binary.MaxBytes},
		Archive: renderers.ArchiveConfig{MaxEntries: r.Archive.MaxEntries, ShowHidden: r.Archive.ShowHidden},
		Code:    renderers.CodeConfig{Wrap: r.Code.Wrap},
	}
}
