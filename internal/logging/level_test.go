package logging

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input  string
		want   slog.Level
		wantOK bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"Warn", slog.LevelWarn, true},
		{"warning", slog.LevelWarn, true},
		{" error\n", slog.LevelError, true},
		{"", DefaultLevel, false},
		{"trace", DefaultLevel, false},
		{"verbose", DefaultLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseLevel(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestLevelNames_AllParse(t *testing.T) {
	prev := slog.LevelDebug - 1
	for _, name := range LevelNames {
		level, ok := ParseLevel(name)
		if !ok {
			t.Errorf("LevelNames entry %q does not parse", name)
		}
		if level <= prev {
			t.Errorf("LevelNames not in increasing severity at %q", name)
		}
		prev = level
	}
}

func TestDefaultLevel_HidesInfo(t *testing.T) {
	if DefaultLevel <= slog.LevelInfo {
		t.Errorf("DefaultLevel = %v; info records would reach stderr during cat", DefaultLevel)
	}
}
