package version

import (
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func stamped(settings ...string) *debug.BuildInfo {
	bi := &debug.BuildInfo{GoVersion: "go1.25.1"}
	for i := 0; i+1 < len(settings); i += 2 {
		bi.Settings = append(bi.Settings, debug.BuildSetting{Key: settings[i], Value: settings[i+1]})
	}
	return bi
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		commit     string
		date       string
		bi         *debug.BuildInfo
		wantCommit string
		wantDate   string
	}{
		{
			name:       "linker values win",
			commit:     "abc1234",
			date:       "2026-01-10T15:04:05Z",
			bi:         stamped("vcs.revision", "ffffffffffffffff", "vcs.time", "2025-01-01T00:00:00Z"),
			wantCommit: "abc1234",
			wantDate:   "2026-01-10T15:04:05Z",
		},
		{
			name:       "vcs stamp shortened",
			bi:         stamped("vcs.revision", "0123456789abcdef", "vcs.time", "2026-02-03T04:05:06Z"),
			wantCommit: "0123456",
			wantDate:   "2026-02-03T04:05:06Z",
		},
		{
			name:       "dirty tree",
			bi:         stamped("vcs.revision", "0123456789abcdef", "vcs.modified", "true"),
			wantCommit: "0123456-dirty",
			wantDate:   "unknown",
		},
		{
			name:       "no build info",
			wantCommit: "unknown",
			wantDate:   "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := resolve("0.1.0", tt.commit, tt.date, tt.bi)
			if info.GitCommit != tt.wantCommit {
				t.Errorf("GitCommit = %q, want %q", info.GitCommit, tt.wantCommit)
			}
			if info.BuildDate != tt.wantDate {
				t.Errorf("BuildDate = %q, want %q", info.BuildDate, tt.wantDate)
			}
			if info.Version != "0.1.0" {
				t.Errorf("Version = %q, want 0.1.0", info.Version)
			}
		})
	}
}

func TestResolve_Toolchain(t *testing.T) {
	if got := resolve("0.1.0", "", "", stamped()).GoVersion; got != "go1.25.1" {
		t.Errorf("GoVersion = %q, want the build info toolchain", got)
	}
	info := resolve("", "", "", nil)
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want runtime version", info.GoVersion)
	}
	if info.Platform != runtime.GOOS+"/"+runtime.GOARCH {
		t.Errorf("Platform = %q", info.Platform)
	}
	if info.Version != "0.0.0-dev" {
		t.Errorf("empty VERSION should read as a dev build, got %q", info.Version)
	}
}

func TestInfoString(t *testing.T) {
	info := Info{
		Version:   "0.1.0",
		GitCommit: "abc1234-dirty",
		BuildDate: "unknown",
		GoVersion: "go1.25.1",
		Platform:  "linux/amd64",
	}
	want := "Version:    0.1.0\n" +
		"Git Commit: abc1234-dirty\n" +
		"Build Date: unknown\n" +
		"Go Version: go1.25.1\n" +
		"Platform:   linux/amd64"
	if got := info.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}
}

func TestGet_EmbeddedVersion(t *testing.T) {
	info := Get()
	if info.Version != strings.TrimSpace(versionFile) || info.Version == "" {
		t.Errorf("Version = %q, want embedded VERSION", info.Version)
	}
	if info.GitCommit == "" || info.BuildDate == "" {
		t.Errorf("Get() left fields empty: %+v", info)
	}
}
