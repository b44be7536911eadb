package walker

import (
	"path/filepath"
	"strings"
)

// Rules select the files a walk yields. Include rules win over skip rules;
// when any include rule exists, only included files are yielded.
type Rules struct {
	SkipHidden        bool
	SkipExtensions    []string
	SkipFiles         []string
	SkipDirectories   []string
	IncludeExtensions []string
	IncludeFiles      []string
}

// DefaultRules skip hidden entries and common dependency directories.
func DefaultRules() Rules {
	return Rules{
		SkipHidden:      true,
		SkipDirectories: []string{"node_modules", "vendor", "__pycache__"},
	}
}

// Filter determines whether files and directories should be processed.
type Filter struct {
	rules Rules
}

// NewFilter creates a new Filter from rules.
func NewFilter(rules Rules) *Filter {
	return &Filter{rules: rules}
}

// ShouldProcessFile returns true if the file should be processed.
func (f *Filter) ShouldProcessFile(path string) bool {
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(path))

	// Include overrides take precedence
	if f.isFileIncluded(name, ext) {
		return true
	}
	if f.isFileSkipped(name, ext) {
		return false
	}
	return !f.hasIncludeRules()
}

// ShouldProcessDir returns true if the directory should be traversed.
func (f *Filter) ShouldProcessDir(path string) bool {
	name := filepath.Base(path)

	if f.rules.SkipHidden && isHidden(name) {
		return false
	}
	for _, skipDir := range f.rules.SkipDirectories {
		if matchPattern(skipDir, name) {
			return false
		}
	}
	return true
}

func (f *Filter) isFileSkipped(name, ext string) bool {
	if f.rules.SkipHidden && isHidden(name) {
		return true
	}
	for _, skipExt := range f.rules.SkipExtensions {
		if normalizeExt(skipExt) == ext {
			return true
		}
	}
	for _, skipFile := range f.rules.SkipFiles {
		if matchPattern(skipFile, name) {
			return true
		}
	}
	return false
}

func (f *Filter) isFileIncluded(name, ext string) bool {
	for _, includeExt := range f.rules.IncludeExtensions {
		if normalizeExt(includeExt) == ext {
			return true
		}
	}
	for _, includeFile := range f.rules.IncludeFiles {
		if matchPattern(includeFile, name) {
			return true
		}
	}
	return false
}

func (f *Filter) hasIncludeRules() bool {
	return len(f.rules.IncludeExtensions) > 0 || len(f.rules.IncludeFiles) > 0
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// normalizeExt ensures extension has leading dot and is lowercase.
func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// matchPattern matches a name exactly or against a glob with * wildcards.
func matchPattern(pattern, name string) bool {
	if pattern == name {
		return true
	}
	if strings.Contains(pattern, "*") {
		matched, err := filepath.Match(pattern, name)
		return err == nil && matched
	}
	return false
}
