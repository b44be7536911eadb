// Package version reports the r3x release and how the binary was built.
package version

import (
	_ "embed"
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var versionFile string

// Set by the release build:
//
//	go build -ldflags "-X github.com/rexbrahh/terminal.r3x.sh-sub000/internal/version.gitCommit=abc1234 \
//	  -X github.com/rexbrahh/terminal.r3x.sh-sub000/internal/version.buildDate=2026-01-10T15:04:05Z"
var (
	gitCommit string
	buildDate string
)

const unknown = "unknown"

// Info describes the running binary.
type Info struct {
	Version   string
	GitCommit string
	BuildDate string
	GoVersion string
	Platform  string
}

// String formats Info as aligned "Label: value" lines.
func (i Info) String() string {
	rows := [][2]string{
		{"Version", i.Version},
		{"Git Commit", i.GitCommit},
		{"Build Date", i.BuildDate},
		{"Go Version", i.GoVersion},
		{"Platform", i.Platform},
	}
	var b strings.Builder
	for n, row := range rows {
		if n > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-11s %s", row[0]+":", row[1])
	}
	return b.String()
}

// Get returns the build information of the running binary. Linker values
// win over VCS stamps, which win over "unknown".
func Get() Info {
	bi, _ := debug.ReadBuildInfo()
	return resolve(strings.TrimSpace(versionFile), gitCommit, buildDate, bi)
}

func resolve(ver, commit, date string, bi *debug.BuildInfo) Info {
	stamp := readStamp(bi)

	info := Info{
		Version:   ver,
		GitCommit: commit,
		BuildDate: date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info.Version == "" {
		info.Version = "0.0.0-dev"
	}
	if info.GitCommit == "" {
		info.GitCommit = stamp.commit()
	}
	if info.BuildDate == "" {
		info.BuildDate = stamp.time
	}
	if info.BuildDate == "" {
		info.BuildDate = unknown
	}
	if bi != nil && bi.GoVersion != "" {
		info.GoVersion = bi.GoVersion
	}
	return info
}

// vcsStamp holds the VCS settings the go command embeds in module builds.
type vcsStamp struct {
	revision string
	time     string
	dirty    bool
}

func (s vcsStamp) commit() string {
	if s.revision == "" {
		return unknown
	}
	if s.dirty {
		return s.revision + "-dirty"
	}
	return s.revision
}

func readStamp(bi *debug.BuildInfo) vcsStamp {
	var s vcsStamp
	if bi == nil {
		return s
	}
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			s.revision = setting.Value
			if len(s.revision) > 7 {
				s.revision = s.revision[:7]
			}
		case "vcs.time":
			s.time = setting.Value
		case "vcs.modified":
			s.dirty = setting.Value == "true"
		}
	}
	return s
}
