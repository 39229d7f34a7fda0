// This file contains environment variable utilities for configuration override.

package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Environment Variable Utilities
// ─────────────────────────────────────────────────────────────────────────────

// getEnvString returns the value of the environment variable with the given key
// (prefixed with EnvPrefix), or the default value if not set.
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(EnvPrefix + key); val != "" {
		return val
	}
	return defaultVal
}

// isFlagSet checks if a flag was explicitly set on the command line.
// This is used to determine whether to apply environment variable overrides.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
// This is useful for aliased flags where either the short or long form may be used.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride declares a single environment variable override.
// Each entry maps an env key (without the PROCWATCH_ prefix) to the CLI flag
// name(s) it corresponds to and a function that applies the env value.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string)
}

func durationOverride(key, flagName string, field func(*AppConfig) *time.Duration) envOverride {
	return envOverride{key, []string{flagName}, func(c *AppConfig, v string) {
		if parsed, err := time.ParseDuration(v); err == nil {
			*field(c) = parsed
		}
	}}
}

func stringOverride(key, flagName string, field func(*AppConfig) *string) envOverride {
	return envOverride{key, []string{flagName}, func(c *AppConfig, v string) {
		*field(c) = v
	}}
}

func boolOverride(key string, flags []string, field func(*AppConfig) *bool) envOverride {
	return envOverride{key, flags, func(c *AppConfig, v string) {
		*field(c) = parseBoolEnv(v, *field(c))
	}}
}

// envOverrides is the declarative table of all environment variable overrides.
var envOverrides = []envOverride{
	{"BATCH_SIZE", []string{"batch-size"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.BatchSize = parsed
		}
	}},
	{"TOP", []string{"top"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			c.Top = parsed
		}
	}},

	durationOverride("SAMPLE_INTERVAL", "sample-interval", func(c *AppConfig) *time.Duration { return &c.SampleInterval }),
	durationOverride("PROBE_DEADLINE", "probe-deadline", func(c *AppConfig) *time.Duration { return &c.ProbeDeadline }),
	durationOverride("CYCLE_INTERVAL", "cycle-interval", func(c *AppConfig) *time.Duration { return &c.CycleInterval }),
	durationOverride("RETRY_BACKOFF", "retry-backoff", func(c *AppConfig) *time.Duration { return &c.RetryBackoff }),
	durationOverride("STALE_AFTER", "stale-after", func(c *AppConfig) *time.Duration { return &c.StaleAfter }),
	durationOverride("FRAME_INTERVAL", "frame-interval", func(c *AppConfig) *time.Duration { return &c.FrameInterval }),

	stringOverride("PROC_ROOT", "proc-root", func(c *AppConfig) *string { return &c.ProcRoot }),
	stringOverride("DISK_PATH", "disk-path", func(c *AppConfig) *string { return &c.DiskPath }),
	stringOverride("METRICS_ADDR", "metrics-addr", func(c *AppConfig) *string { return &c.MetricsAddr }),
	stringOverride("LOG_LEVEL", "log-level", func(c *AppConfig) *string { return &c.LogLevel }),
	stringOverride("LOG_FILE", "log-file", func(c *AppConfig) *string { return &c.LogFile }),

	boolOverride("ONCE", []string{"once"}, func(c *AppConfig) *bool { return &c.Once }),
	boolOverride("HEADLESS", []string{"headless"}, func(c *AppConfig) *bool { return &c.Headless }),
	boolOverride("NO_COLOR", []string{"no-color"}, func(c *AppConfig) *bool { return &c.NoColor }),
}

// parseBoolEnv parses a boolean environment variable value.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
// Returns defaultVal if the value is not recognized.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > Defaults.
//
// Environment values also take priority over the JSON configuration file,
// which is applied before this function runs.
//
// Supported environment variables (all prefixed with PROCWATCH_):
//   - BATCH_SIZE, TOP, SAMPLE_INTERVAL, PROBE_DEADLINE, CYCLE_INTERVAL,
//     RETRY_BACKOFF, STALE_AFTER, FRAME_INTERVAL, PROC_ROOT, DISK_PATH,
//     METRICS_ADDR, LOG_LEVEL, LOG_FILE, ONCE, HEADLESS, NO_COLOR
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			o.apply(config, val)
		}
	}
}
