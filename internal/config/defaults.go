package config

import (
	"github.com/spf13/viper"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/renderers"
)

// Default configuration values.
const (
	DefaultLogLevel = "warn"
	DefaultLogFile  = "" // empty = stderr only

	DefaultRenderMaxWidth     = 0
	DefaultRenderColor        = ColorAuto
	DefaultRenderShowMetadata = false
	DefaultRenderLineNumbers  = false

	DefaultMarkdownEngine       = renderers.EngineNative
	DefaultMarkdownGlamourStyle = renderers.GlamourDark

	DefaultJSONMaxDepth     = renderers.DefaultJSONMaxDepth
	DefaultJSONArrayPreview = renderers.DefaultJSONArrayPreview

	DefaultCSVMaxRows      = renderers.DefaultCSVMaxRows
	DefaultCSVMaxColumns   = renderers.DefaultCSVMaxColumns
	DefaultCSVMaxCellWidth = renderers.DefaultCSVMaxCellWidth

	DefaultBinaryBytesPerLine = renderers.DefaultBytesPerLine
	DefaultBinaryMaxBytes     = renderers.DefaultHexBytes

	DefaultArchiveMaxEntries = renderers.DefaultArchiveMaxEntries
	DefaultArchiveShowHidden = false

	DefaultCodeWrap = true
)

// Color modes for render.color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// defaultValues maps every config key to its default.
var defaultValues = map[string]any{
	"log_level": DefaultLogLevel,
	"log_file":  DefaultLogFile,

	"render.max_width":     DefaultRenderMaxWidth,
	"render.color":         DefaultRenderColor,
	"render.show_metadata": DefaultRenderShowMetadata,
	"render.line_numbers":  DefaultRenderLineNumbers,

	"renderers.markdown.engine":        DefaultMarkdownEngine,
	"renderers.markdown.glamour_style": DefaultMarkdownGlamourStyle,
	"renderers.json.max_depth":         DefaultJSONMaxDepth,
	"renderers.json.array_preview":     DefaultJSONArrayPreview,
	"renderers.csv.max_rows":           DefaultCSVMaxRows,
	"renderers.csv.max_columns":        DefaultCSVMaxColumns,
	"renderers.csv.max_cell_width":     DefaultCSVMaxCellWidth,
	"renderers.binary.bytes_per_line":  DefaultBinaryBytesPerLine,
	"renderers.binary.max_bytes":       DefaultBinaryMaxBytes,
	"renderers.archive.max_entries":    DefaultArchiveMaxEntries,
	"renderers.archive.show_hidden":    DefaultArchiveShowHidden,
	"renderers.code.wrap":              DefaultCodeWrap,
}

// setDefaults registers all default configuration values with the global
// viper. Called during Init() before reading config files.
func setDefaults() {
	for key, value := range defaultValues {
		viper.SetDefault(key, value)
	}
}

// setViperDefaults registers all default configuration values with v.
func setViperDefaults(v *viper.Viper) {
	for key, value := range defaultValues {
		v.SetDefault(key, value)
	}
}

// NewDefaultConfig returns a Config populated with default values.
func NewDefaultConfig() Config {
	return Config{
		LogLevel: DefaultLogLevel,
		LogFile:  DefaultLogFile,
		Render: RenderConfig{
			MaxWidth:     DefaultRenderMaxWidth,
			Color:        DefaultRenderColor,
			ShowMetadata: DefaultRenderShowMetadata,
			LineNumbers:  DefaultRenderLineNumbers,
		},
		Renderers: RenderersConfig{
			Markdown: MarkdownConfig{Engine: DefaultMarkdownEngine, GlamourStyle: DefaultMarkdownGlamourStyle},
			JSON:     JSONConfig{MaxDepth: DefaultJSONMaxDepth, ArrayPreview: DefaultJSONArrayPreview},
			CSV: CSVConfig{
				MaxRows:      DefaultCSVMaxRows,
				MaxColumns:   DefaultCSVMaxColumns,
				MaxCellWidth: DefaultCSVMaxCellWidth,
			},
			Binary:  BinaryConfig{BytesPerLine: DefaultBinaryBytesPerLine, MaxBytes: DefaultBinaryMaxBytes},
			Archive: ArchiveConfig{MaxEntries: DefaultArchiveMaxEntries, ShowHidden: DefaultArchiveShowHidden},
			Code:    CodeConfig{Wrap: DefaultCodeWrap},
		},
	}
}
