package cmdutil

import (
	"path/filepath"

	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/config"
	"github.com/rexbrahh/terminal.r3x.sh-sub000/internal/source"
)

// ResolvePath expands "~" and returns an absolute, cleaned path.
// Empty input and the stdin marker are returned unchanged.
func ResolvePath(path string) (string, error) {
	if path == "" || path == source.StdinName {
		return path, nil
	}

	expanded := config.ExpandHome(path)
	absPath, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}

	return filepath.Clean(absPath), nil
}
