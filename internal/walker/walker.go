// Package walker expands directory arguments into the files beneath them.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultMaxFiles bounds a single walk.
const DefaultMaxFiles = 1000

// ErrTooManyFiles is returned with the partial result when a walk reaches
// its file limit.
var ErrTooManyFiles = errors.New("too many files")

// Stats describes the last walk.
type Stats struct {
	FilesDiscovered int
	FilesSkipped    int
	DirsTraversed   int
	DirsSkipped     int
}

// Walker lists the files under a directory in lexical order.
type Walker struct {
	filter   *Filter
	maxFiles int
	stats    Stats
}

// WalkerOption configures the Walker.
type WalkerOption func(*Walker)

// WithRules replaces the default rules.
func WithRules(rules Rules) WalkerOption {
	return func(w *Walker) {
		w.filter = NewFilter(rules)
	}
}

// WithMaxFiles sets the maximum number of files a walk returns.
func WithMaxFiles(n int) WalkerOption {
	return func(w *Walker) {
		if n > 0 {
			w.maxFiles = n
		}
	}
}

// New creates a Walker.
func New(opts ...WalkerOption) *Walker {
	w := &Walker{
		filter:   NewFilter(DefaultRules()),
		maxFiles: DefaultMaxFiles,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Stats returns statistics for the last walk.
func (w *Walker) Stats() Stats {
	return w.stats
}

// Walk returns the regular files under root. Symlinks are skipped. The root
// itself is never filtered. When the limit is reached the files found so
// far are returned together with ErrTooManyFiles.
func (w *Walker) Walk(ctx context.Context, root string) ([]string, error) {
	w.stats = Stats{}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path; %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Unreadable subdirectories are skipped, not fatal.
			if path != root && d != nil && d.IsDir() {
				w.stats.DirsSkipped++
				return fs.SkipDir
			}
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		if d.IsDir() {
			if path != root && !w.filter.ShouldProcessDir(path) {
				w.stats.DirsSkipped++
				return fs.SkipDir
			}
			w.stats.DirsTraversed++
			return nil
		}

		if !d.Type().IsRegular() || !w.filter.ShouldProcessFile(path) {
			w.stats.FilesSkipped++
			return nil
		}

		if len(files) >= w.maxFiles {
			return ErrTooManyFiles
		}
		files = append(files, path)
		w.stats.FilesDiscovered++
		return nil
	})

	if err != nil {
		if errors.Is(err, ErrTooManyFiles) {
			return files, fmt.Errorf("stopped after %d files; %w", w.maxFiles, ErrTooManyFiles)
		}
		return nil, fmt.Errorf("failed to walk %s; %w", root, err)
	}
	return files, nil
}
