package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/logging"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/renderers"
)

// ValidationError represents a config validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation failures.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var b strings.Builder
	b.WriteString("config validation failed:\n")
	for _, err := range e {
		b.WriteString("  - ")
		b.WriteString(err.Error())
		b.WriteString("\n")
	}
	return b.String()
}

var validColors = map[string]bool{
	ColorAuto:   true,
	ColorAlways: true,
	ColorNever:  true,
}

var validEngines = map[string]bool{
	renderers.EngineNative:  true,
	renderers.EngineGlamour: true,
}

var validGlamourStyles = map[string]bool{
	renderers.GlamourDark:  true,
	renderers.GlamourLight: true,
	renderers.GlamourNoTTY: true,
}

// Validate checks the configuration for errors.
// Returns ValidationErrors if validation fails.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	if _, ok := logging.ParseLevel(cfg.LogLevel); !ok {
		errs = append(errs, ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("must be one of %s; got %q", strings.Join(logging.LevelNames, ", "), cfg.LogLevel),
		})
	}

	if cfg.Render.MaxWidth < 0 {
		errs = append(errs, ValidationError{
			Field:   "render.max_width",
			Message: fmt.Sprintf("must be 0 (terminal width) or positive, got %d", cfg.Render.MaxWidth),
		})
	}

	if !validColors[cfg.Render.Color] {
		errs = append(errs, ValidationError{
			Field:   "render.color",
			Message: fmt.Sprintf("must be one of auto, always, never; got %q", cfg.Render.Color),
		})
	}

	md := cfg.Renderers.Markdown
	if !validEngines[md.Engine] {
		errs = append(errs, ValidationError{
			Field:   "renderers.markdown.engine",
			Message: fmt.Sprintf("must be one of native, glamour; got %q", md.Engine),
		})
	}
	if !validGlamourStyles[md.GlamourStyle] {
		errs = append(errs, ValidationError{
			Field:   "renderers.markdown.glamour_style",
			Message: fmt.Sprintf("must be one of dark, light, notty; got %q", md.GlamourStyle),
		})
	}

	positive := []struct {
		field string
		value int
	}{
		{"renderers.json.max_depth", cfg.Renderers.JSON.MaxDepth},
		{"renderers.json.array_preview", cfg.Renderers.JSON.ArrayPreview},
		{"renderers.csv.max_rows", cfg.Renderers.CSV.MaxRows},
		{"renderers.csv.max_columns", cfg.Renderers.CSV.MaxColumns},
		{"renderers.csv.max_cell_width", cfg.Renderers.CSV.MaxCellWidth},
		{"renderers.binary.max_bytes", cfg.Renderers.Binary.MaxBytes},
		{"renderers.archive.max_entries", cfg.Renderers.Archive.MaxEntries},
	}
	for _, p := range positive {
		if p.value < 1 {
			errs = append(errs, ValidationError{
				Field:   p.field,
				Message: fmt.Sprintf("must be at least 1, got %d", p.value),
			})
		}
	}

	switch cfg.Renderers.Binary.BytesPerLine {
	case 4, 8, 16, 32:
	default:
		errs = append(errs, ValidationError{
			Field:   "renderers.binary.bytes_per_line",
			Message: fmt.Sprintf("must be one of 4, 8, 16, 32; got %d", cfg.Renderers.Binary.BytesPerLine),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var ve ValidationError
	var ves ValidationErrors
	return errors.As(err, &ve) || errors.As(err, &ves)
}
