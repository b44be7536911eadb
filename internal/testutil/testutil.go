// Package testutil provides testing utilities for isolated test environments.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/config"
)

// TestEnv provides an isolated test environment with its own config directory.
type TestEnv struct {
	t         *testing.T
	ConfigDir string
	DataDir   string
}

// NewTestEnv creates an isolated test environment.
// It uses environment variables to override all paths so that a developer's
// own ~/.config/r3x never leaks into a test.
// Cleanup is automatic via t.Cleanup.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	root := t.TempDir()
	configDir := filepath.Join(root, "config")
	dataDir := filepath.Join(root, "data")
	for _, dir := range []string{configDir, dataDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create test dir %s: %v", dir, err)
		}
	}

	// These env vars override viper settings via AutomaticEnv()
	t.Setenv(config.ConfigDirEnv, configDir)
	t.Setenv("HOME", root)
	t.Setenv("R3X_LOG_FILE", "")

	config.Reset()
	if err := config.Init(); err != nil {
		t.Fatalf("failed to initialize test config: %v", err)
	}

	t.Cleanup(func() {
		config.Reset()
	})

	return &TestEnv{
		t:         t,
		ConfigDir: configDir,
		DataDir:   dataDir,
	}
}

// WriteConfig writes config.yaml into the environment's config directory
// and reinitializes the global config from it.
func (e *TestEnv) WriteConfig(content string) string {
	e.t.Helper()

	path := filepath.Join(e.ConfigDir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		e.t.Fatalf("failed to write config: %v", err)
	}

	config.Reset()
	if err := config.Init(); err != nil {
		e.t.Fatalf("failed to reinitialize config: %v", err)
	}
	return path
}

// CreateTestDir creates a directory under the environment's data dir.
// Returns the absolute path to the created directory.
func (e *TestEnv) CreateTestDir(name string) string {
	e.t.Helper()

	dir := filepath.Join(e.DataDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		e.t.Fatalf("failed to create test dir %s: %v", name, err)
	}
	return dir
}

// CreateTestFile creates a file with the given content under the data dir.
// Returns the absolute path to the created file.
func (e *TestEnv) CreateTestFile(name string, content []byte) string {
	e.t.Helper()

	path := filepath.Join(e.DataDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		e.t.Fatalf("failed to create parent of %s: %v", name, err)
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		e.t.Fatalf("failed to create test file %s: %v", path, err)
	}
	return path
}
