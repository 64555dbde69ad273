package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileLoggerWritesLines(t *testing.T) {
	dir := t.TempDir()
	log, err := NewRunLog(dir, LevelInfo)
	if err != nil {
		t.Fatalf("new run log: %v", err)
	}
	log.Info("grouped numeric text", String("text", "50.0"), Int("page", 1))
	log.Debug("suppressed", String("text", "x"))
	child := log.With(Int("page", 2))
	child.Info("converted", String("from", "25.4"), String("to", "1.0000"))
	if err := log.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	base := filepath.Base(log.Path())
	if !strings.HasPrefix(base, "conversion_log_") || !strings.HasSuffix(base, ".txt") {
		t.Fatalf("unexpected log file name %q", base)
	}
	data, err := os.ReadFile(log.Path())
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "grouped numeric text page=1 text=50.0") {
		t.Errorf("missing info line in %q", out)
	}
	if strings.Contains(out, "suppressed") {
		t.Errorf("debug line should be filtered at info level: %q", out)
	}
	if !strings.Contains(out, "converted from=25.4 page=2 to=1.0000") {
		t.Errorf("missing bound-field line in %q", out)
	}
}
