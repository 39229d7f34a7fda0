package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PROCWATCH_BATCH_SIZE", "12")
	t.Setenv("PROCWATCH_STALE_AFTER", "1m")
	t.Setenv("PROCWATCH_PROC_ROOT", "/mnt/proc")
	t.Setenv("PROCWATCH_NO_COLOR", "yes")
	t.Setenv("PROCWATCH_TOP", "5")

	cfg, err := ParseConfig("procwatch", nil, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.BatchSize != 12 || cfg.StaleAfter != time.Minute || cfg.ProcRoot != "/mnt/proc" || !cfg.NoColor || cfg.Top != 5 {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestFlagBeatsEnv(t *testing.T) {
	t.Setenv("PROCWATCH_BATCH_SIZE", "12")
	cfg, err := ParseConfig("procwatch", []string{"-batch-size", "3"}, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BatchSize != 3 {
		t.Errorf("BatchSize = %d, want flag value 3", cfg.BatchSize)
	}
}

func TestInvalidEnvValueIsIgnored(t *testing.T) {
	t.Setenv("PROCWATCH_CYCLE_INTERVAL", "soon")
	cfg, err := ParseConfig("procwatch", nil, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CycleInterval != DefaultCycleInterval {
		t.Errorf("CycleInterval = %v, want default", cfg.CycleInterval)
	}
}

func TestPrecedenceFlagEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "procwatch.json")
	content := `{"batch_size": 7, "cycle_interval": "5s", "stale_after": "30s", "log_level": "warn"}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PROCWATCH_CONFIG", path)
	t.Setenv("PROCWATCH_CYCLE_INTERVAL", "4s")

	cfg, err := ParseConfig("procwatch", []string{"-stale-after", "20s"}, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, path)
	}
	if cfg.BatchSize != 7 || cfg.LogLevel != "warn" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.CycleInterval != 4*time.Second {
		t.Errorf("CycleInterval = %v, env should beat file", cfg.CycleInterval)
	}
	if cfg.StaleAfter != 20*time.Second {
		t.Errorf("StaleAfter = %v, flag should beat file", cfg.StaleAfter)
	}
}

func TestParseBoolEnv(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]bool{"true": true, "1": true, "YES": true, "false": false, "0": false, "No": false} {
		if got := parseBoolEnv(in, !want); got != want {
			t.Errorf("parseBoolEnv(%q) = %v", in, got)
		}
	}
	if !parseBoolEnv("maybe", true) {
		t.Error("unrecognized value should keep the default")
	}
}
