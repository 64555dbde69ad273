package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"INCHIFY_INPUT", "INCHIFY_OUTPUT", "INCHIFY_LOG_DIR",
		"INCHIFY_GAP_THRESHOLD", "INCHIFY_RULES", "INCHIFY_REPORT",
		"INCHIFY_NO_VIEWER",
	} {
		t.Setenv(key, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Input != "input.pdf" || cfg.Output != "output_converted.pdf" {
		t.Errorf("defaults = %q/%q, want input.pdf/output_converted.pdf", cfg.Input, cfg.Output)
	}
	if cfg.GapThreshold != 3.0 {
		t.Errorf("gap threshold = %v, want 3.0", cfg.GapThreshold)
	}
	if cfg.NoViewer {
		t.Error("NoViewer should default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("INCHIFY_INPUT", "drawing.pdf")
	t.Setenv("INCHIFY_GAP_THRESHOLD", "5.5")
	t.Setenv("INCHIFY_NO_VIEWER", "true")
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Input != "drawing.pdf" {
		t.Errorf("input = %q, want drawing.pdf", cfg.Input)
	}
	if cfg.GapThreshold != 5.5 {
		t.Errorf("gap threshold = %v, want 5.5", cfg.GapThreshold)
	}
	if !cfg.NoViewer {
		t.Error("NoViewer = false, want true")
	}
}

func TestLoadRejectsBadGap(t *testing.T) {
	t.Setenv("INCHIFY_GAP_THRESHOLD", "wide")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric gap threshold")
	}
	t.Setenv("INCHIFY_GAP_THRESHOLD", "-1")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for negative gap threshold")
	}
}
