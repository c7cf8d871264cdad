package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		opts Options
		want slog.Level
	}{
		{Options{}, slog.LevelWarn},
		{Options{Verbose: true}, slog.LevelInfo},
		{Options{VeryVerbose: true}, slog.LevelDebug},
		{Options{Verbose: true, VeryVerbose: true}, slog.LevelDebug},
	}
	for _, tt := range tests {
		if got := tt.opts.Level(); got != tt.want {
			t.Errorf("Level(%+v) = %v, want %v", tt.opts, got, tt.want)
		}
	}
}

func TestDumpIgnoresLogLevel(t *testing.T) {
	type config struct {
		Name      string
		OutputDir string
	}
	var buf bytes.Buffer
	Dump(&buf, config{Name: "Blog", OutputDir: "_site"})
	got := buf.String()
	for _, want := range []string{"Name", `"Blog"`, `"_site"`} {
		if !strings.Contains(got, want) {
			t.Errorf("Dump output missing %s: %q", want, got)
		}
	}
}
