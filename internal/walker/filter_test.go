package walker

import "testing"

func TestFilter_ShouldProcessFile(t *testing.T) {
	tests := []struct {
		name  string
		rules Rules
		path  string
		want  bool
	}{
		{"empty rules allow all", Rules{}, "/test/file.go", true},
		{"skip extension", Rules{SkipExtensions: []string{".log"}}, "/test/debug.log", false},
		{"skip extension without dot", Rules{SkipExtensions: []string{"log"}}, "/test/debug.log", false},
		{"skip extension case insensitive", Rules{SkipExtensions: []string{".LOG"}}, "/test/debug.log", false},
		{"allow non-skipped extension", Rules{SkipExtensions: []string{".log"}}, "/test/main.go", true},
		{"skip hidden file", Rules{SkipHidden: true}, "/test/.hidden", false},
		{"allow non-hidden file when skip hidden", Rules{SkipHidden: true}, "/test/visible.txt", true},
		{"allow hidden file when skip hidden false", Rules{}, "/test/.hidden", true},
		{"skip file by name", Rules{SkipFiles: []string{"Makefile"}}, "/test/Makefile", false},
		{"skip file by glob pattern", Rules{SkipFiles: []string{"*.min.js"}}, "/test/app.min.js", false},
		{
			"include extension override",
			Rules{SkipExtensions: []string{".go"}, IncludeExtensions: []string{".go"}},
			"/test/main.go",
			true,
		},
		{
			"include file by name override",
			Rules{SkipFiles: []string{"*.config"}, IncludeFiles: []string{"app.config"}},
			"/test/app.config",
			true,
		},
		{"include only mode - matches", Rules{IncludeExtensions: []string{".md", ".csv"}}, "/test/README.md", true},
		{"include only mode - no match", Rules{IncludeExtensions: []string{".md", ".csv"}}, "/test/data.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilter(tt.rules)
			if got := f.ShouldProcessFile(tt.path); got != tt.want {
				t.Errorf("ShouldProcessFile(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestFilter_ShouldProcessDir(t *testing.T) {
	tests := []struct {
		name  string
		rules Rules
		path  string
		want  bool
	}{
		{"empty rules allow all", Rules{}, "/test/src", true},
		{"skip directory by name", Rules{SkipDirectories: []string{"node_modules"}}, "/test/node_modules", false},
		{"skip directory by glob", Rules{SkipDirectories: []string{"__*__"}}, "/test/__pycache__", false},
		{"allow non-skipped directory", Rules{SkipDirectories: []string{"node_modules"}}, "/test/src", true},
		{"skip hidden directory", Rules{SkipHidden: true}, "/test/.git", false},
		{"allow non-hidden directory when skip hidden", Rules{SkipHidden: true}, "/test/src", true},
		{"current directory is not hidden", Rules{SkipHidden: true}, ".", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilter(tt.rules)
			if got := f.ShouldProcessDir(tt.path); got != tt.want {
				t.Errorf("ShouldProcessDir(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestNormalizeExt(t *testing.T) {
	tests := []struct{ in, want string }{
		{".go", ".go"},
		{"go", ".go"},
		{".GO", ".go"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeExt(tt.in); got != tt.want {
			t.Errorf("normalizeExt(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
