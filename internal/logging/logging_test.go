package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/rp1-run/rp1/internal/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[config.LogLevel]slog.Level{
		config.LogLevelDebug: slog.LevelDebug,
		config.LogLevelInfo:  slog.LevelInfo,
		config.LogLevelWarn:  slog.LevelWarn,
		config.LogLevelError: slog.LevelError,
		"":                   slog.LevelWarn,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := WithArtifact(New(&buf, config.LogLevelInfo, config.LogFormatJSON), "base/agents/a.md", "agent")
	logger.Info("parsed")
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one record, got %d: %s", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if rec["artifact"] != "base/agents/a.md" || rec["kind"] != "agent" || rec["msg"] != "parsed" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestNew_TextFormatDefault(t *testing.T) {
	var buf bytes.Buffer
	WithStage(New(&buf, config.LogLevelWarn, ""), "parse-artifacts").Warn("failed")
	out := buf.String()
	if !strings.Contains(out, "stage=parse-artifacts") || !strings.Contains(out, "msg=failed") {
		t.Fatalf("unexpected text output: %s", out)
	}
}

func TestNewForTest_Silent(t *testing.T) {
	NewForTest().Error("nothing to see")
}
