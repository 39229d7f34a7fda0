package config

import (
	"bytes"
	"errors"
	"flag"
	"strings"
	"testing"
	"time"

	apperrors "github.com/agbru/procwatch/internal/errors"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig("procwatch", nil, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg != Default() {
		t.Errorf("ParseConfig() = %+v, want defaults %+v", cfg, Default())
	}
	if cfg.BatchSize != 50 || cfg.SampleInterval != 3*time.Second || cfg.CycleInterval != 2*time.Second || cfg.RetryBackoff != 100*time.Millisecond {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestParseConfigFlags(t *testing.T) {
	args := []string{
		"-batch-size", "8", "-sample-interval", "1s", "-cycle-interval", "500ms",
		"-proc-root", "/host/proc", "-headless", "-log-level", "debug", "-V",
	}
	cfg, err := ParseConfig("procwatch", args, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.BatchSize != 8 || cfg.SampleInterval != time.Second || cfg.CycleInterval != 500*time.Millisecond {
		t.Errorf("numeric flags not applied: %+v", cfg)
	}
	if cfg.ProcRoot != "/host/proc" || !cfg.Headless || cfg.LogLevel != "debug" || !cfg.Version {
		t.Errorf("string/bool flags not applied: %+v", cfg)
	}
}

func TestParseConfigHelp(t *testing.T) {
	var out bytes.Buffer
	_, err := ParseConfig("procwatch", []string{"--help"}, &out)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("err = %v, want flag.ErrHelp", err)
	}
	for _, want := range []string{"Usage: procwatch", "-batch-size", "PROCWATCH_"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("usage missing %q", want)
		}
	}
}

func TestParseConfigRejectsPositionalArgs(t *testing.T) {
	_, err := ParseConfig("procwatch", []string{"extra"}, &bytes.Buffer{})
	var cfgErr apperrors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("err = %v, want ConfigError", err)
	}
}

func TestParseConfigUnknownFlag(t *testing.T) {
	_, err := ParseConfig("procwatch", []string{"--bogus"}, &bytes.Buffer{})
	var cfgErr apperrors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("err = %v, want ConfigError", err)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		ok     bool
	}{
		{"defaults", func(*AppConfig) {}, true},
		{"batch size zero", func(c *AppConfig) { c.BatchSize = 0 }, false},
		{"negative sample interval", func(c *AppConfig) { c.SampleInterval = -time.Second }, false},
		{"zero cycle interval", func(c *AppConfig) { c.CycleInterval = 0 }, false},
		{"zero retry backoff", func(c *AppConfig) { c.RetryBackoff = 0 }, false},
		{"zero frame interval", func(c *AppConfig) { c.FrameInterval = 0 }, false},
		{"negative stale-after", func(c *AppConfig) { c.StaleAfter = -1 }, false},
		{"negative top", func(c *AppConfig) { c.Top = -1 }, false},
		{"stale-after disabled", func(c *AppConfig) { c.StaleAfter = 0 }, true},
		{"deadline shorter than interval", func(c *AppConfig) { c.ProbeDeadline = time.Second }, false},
		{"deadline longer than interval", func(c *AppConfig) { c.ProbeDeadline = 5 * time.Second }, true},
		{"empty proc root", func(c *AppConfig) { c.ProcRoot = "" }, false},
		{"once and headless", func(c *AppConfig) { c.Once, c.Headless = true, true }, false},
		{"unknown log level", func(c *AppConfig) { c.LogLevel = "chatty" }, false},
		{"upper-case log level", func(c *AppConfig) { c.LogLevel = "WARN" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok {
				var cfgErr apperrors.ConfigError
				if !errors.As(err, &cfgErr) {
					t.Errorf("Validate() = %v, want ConfigError", err)
				}
			}
		})
	}
}
