package config

import (
	"os"
	"path/filepath"
	"testing"
)

// isolate points every config search location at empty temp directories.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv(ConfigDirEnv, tmpDir)
	t.Setenv("HOME", tmpDir)

	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working dir: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("failed to change to temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	Reset()
	return tmpDir
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestInit_NoConfigFile_UsesDefaults(t *testing.T) {
	isolate(t)

	if err := Init(); err != nil {
		t.Fatalf("Init() returned error when no config file exists: %v", err)
	}

	if path := ConfigFilePath(); path != "" {
		t.Errorf("ConfigFilePath() = %q, want empty string when no config file", path)
	}

	cfg, err := Current()
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if cfg.Render.Color != ColorAuto {
		t.Errorf("Render.Color = %q, want %q", cfg.Render.Color, ColorAuto)
	}
	if cfg.Renderers.CSV.MaxRows != DefaultCSVMaxRows {
		t.Errorf("Renderers.CSV.MaxRows = %d, want %d", cfg.Renderers.CSV.MaxRows, DefaultCSVMaxRows)
	}
}

func TestInit_ConfigInEnvDir_LoadsFromEnvDir(t *testing.T) {
	isolate(t)
	envDir := t.TempDir()
	configPath := writeConfig(t, envDir, "render:\n  max_width: 120\n")
	t.Setenv(ConfigDirEnv, envDir)

	if err := Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	if got := ConfigFilePath(); got != configPath {
		t.Errorf("ConfigFilePath() = %q, want %q", got, configPath)
	}
	if got := GetInt("render.max_width"); got != 120 {
		t.Errorf("GetInt(render.max_width) = %d, want 120", got)
	}
}

func TestInit_ConfigInDefaultDir_LoadsFromDefaultDir(t *testing.T) {
	isolate(t)
	tmpHome := t.TempDir()
	configPath := writeConfig(t, filepath.Join(tmpHome, ".config", "r3x"), "log_level: debug\n")

	t.Setenv(ConfigDirEnv, "")
	t.Setenv("HOME", tmpHome)

	if err := Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	if got := ConfigFilePath(); got != configPath {
		t.Errorf("ConfigFilePath() = %q, want %q", got, configPath)
	}
	if got := GetString("log_level"); got != "debug" {
		t.Errorf("GetString(log_level) = %q, want debug", got)
	}
}

func TestInit_InvalidYAML_ReturnsFatalError(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "render:\n  max_width: [invalid yaml")

	if err := Init(); err == nil {
		t.Fatal("Init() should return error for invalid YAML, got nil")
	}
}

func TestInit_UnreadableFile_ReturnsFatalError(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("skipping test when running as root")
	}

	dir := isolate(t)
	configPath := writeConfig(t, dir, "log_level: info\n")
	if err := os.Chmod(configPath, 0000); err != nil {
		t.Fatalf("failed to chmod config: %v", err)
	}
	defer func() { _ = os.Chmod(configPath, 0644) }()

	if err := Init(); err == nil {
		t.Fatal("Init() should return error for unreadable file, got nil")
	}
}

func TestEnvOverride_NestedKey_OverridesFileValue(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "renderers:\n  archive:\n    max_entries: 20\n")
	t.Setenv("R3X_RENDERERS_ARCHIVE_MAX_ENTRIES", "7")

	if err := Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	cfg, err := Current()
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if cfg.Renderers.Archive.MaxEntries != 7 {
		t.Errorf("Renderers.Archive.MaxEntries = %d, want 7 (env override)", cfg.Renderers.Archive.MaxEntries)
	}
}

func TestEnvOverride_NoFileValue_UsesEnvValue(t *testing.T) {
	isolate(t)
	t.Setenv("R3X_RENDER_COLOR", "never")

	if err := Init(); err != nil {
		t.Fatalf("Init() returned error: %v", err)
	}

	if got := GetString("render.color"); got != "never" {
		t.Errorf("GetString(render.color) = %q, want never (env value)", got)
	}
}

func TestCurrent_InvalidValue_ReturnsValidationError(t *testing.T) {
	isolate(t)
	Set("render.color", "sometimes")

	_, err := Current()
	if err == nil {
		t.Fatal("Current() error = nil, want validation error")
	}
	if !IsValidationError(err) {
		t.Errorf("Current() error = %v, want validation error", err)
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty string", "", ""},
		{"no tilde", "/absolute/path", "/absolute/path"},
		{"relative path", "relative/path", "relative/path"},
		{"tilde only", "~", home},
		{"tilde with slash", "~/config", filepath.Join(home, "config")},
		{"tilde with nested path", "~/.config/r3x", filepath.Join(home, ".config/r3x")},
		{"tilde not at start", "/path/to/~", "/path/to/~"},
		{"tilde without slash", "~invalid", "~invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandHome(tt.input)
			if got != tt.want {
				t.Errorf("ExpandHome(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGetPath_ExpandsTilde(t *testing.T) {
	isolate(t)
	home := os.Getenv("HOME")
	Set("log_file", "~/logs/r3x.log")

	want := filepath.Join(home, "logs", "r3x.log")
	if got := GetPath("log_file"); got != want {
		t.Errorf("GetPath(log_file) = %q, want %q", got, want)
	}
}
