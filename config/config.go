// Package config loads runtime defaults from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/fabtools/inchify/dimension"
)

// Cfg holds runtime configuration loaded from environment variables.
// CLI flags override these values.
type Cfg struct {
	Input        string  // INCHIFY_INPUT, default input.pdf
	Output       string  // INCHIFY_OUTPUT, default output_converted.pdf
	LogDir       string  // INCHIFY_LOG_DIR, default current directory
	GapThreshold float64 // INCHIFY_GAP_THRESHOLD, default 3.0
	RulesPath    string  // INCHIFY_RULES, optional decide() script
	ReportPath   string  // INCHIFY_REPORT, optional HTML report
	NoViewer     bool    // INCHIFY_NO_VIEWER=true suppresses viewer launch
}

// Load reads .env (if present) then environment variables.
func Load() (*Cfg, error) {
	// Best-effort: a missing .env is not an error.
	_ = godotenv.Load()

	cfg := &Cfg{
		Input:        envOr("INCHIFY_INPUT", "input.pdf"),
		Output:       envOr("INCHIFY_OUTPUT", "output_converted.pdf"),
		LogDir:       envOr("INCHIFY_LOG_DIR", "."),
		GapThreshold: dimension.DefaultGapThreshold,
		RulesPath:    strings.TrimSpace(os.Getenv("INCHIFY_RULES")),
		ReportPath:   strings.TrimSpace(os.Getenv("INCHIFY_REPORT")),
	}
	if raw := strings.TrimSpace(os.Getenv("INCHIFY_GAP_THRESHOLD")); raw != "" {
		gap, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("INCHIFY_GAP_THRESHOLD %q: %w", raw, err)
		}
		if gap <= 0 {
			return nil, fmt.Errorf("INCHIFY_GAP_THRESHOLD must be positive, got %v", gap)
		}
		cfg.GapThreshold = gap
	}
	if raw := strings.TrimSpace(os.Getenv("INCHIFY_NO_VIEWER")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("INCHIFY_NO_VIEWER %q: %w", raw, err)
		}
		cfg.NoViewer = v
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
