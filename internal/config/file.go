package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	apperrors "github.com/agbru/procwatch/internal/errors"
)

// Duration is a time.Duration read from JSON either as a Go duration string
// ("2s", "150ms") or as a number of nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
		return nil
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("duration must be a string like \"2s\" or integer nanoseconds: %w", err)
	}
	*d = Duration(n)
	return nil
}

// FileConfig is the content of the JSON configuration file. Absent keys
// leave the corresponding setting untouched.
type FileConfig struct {
	SampleInterval *Duration `json:"sample_interval"`
	ProbeDeadline  *Duration `json:"probe_deadline"`
	CycleInterval  *Duration `json:"cycle_interval"`
	RetryBackoff   *Duration `json:"retry_backoff"`
	BatchSize      *int      `json:"batch_size"`
	StaleAfter     *Duration `json:"stale_after"`
	FrameInterval  *Duration `json:"frame_interval"`
	ProcRoot       *string   `json:"proc_root"`
	DiskPath       *string   `json:"disk_path"`
	MetricsAddr    *string   `json:"metrics_addr"`
	LogLevel       *string   `json:"log_level"`
	LogFile        *string   `json:"log_file"`
	NoColor        *bool     `json:"no_color"`
}

// LoadFile reads and decodes the configuration file at path. Unknown keys
// are rejected so typos do not go unnoticed.
func LoadFile(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, apperrors.NewConfigError("read config file: %v", err)
	}
	var fc FileConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return FileConfig{}, apperrors.NewConfigError("parse config file %s: %v", path, err)
	}
	return fc, nil
}

// applyTo copies the values present in the file into c, skipping settings
// for which isSet reports an explicit flag.
func (fc FileConfig) applyTo(c *AppConfig, isSet func(flagName string) bool) {
	setDur := func(flagName string, src *Duration, dst *time.Duration) {
		if src != nil && !isSet(flagName) {
			*dst = time.Duration(*src)
		}
	}
	setStr := func(flagName string, src *string, dst *string) {
		if src != nil && !isSet(flagName) {
			*dst = *src
		}
	}
	setDur("sample-interval", fc.SampleInterval, &c.SampleInterval)
	setDur("probe-deadline", fc.ProbeDeadline, &c.ProbeDeadline)
	setDur("cycle-interval", fc.CycleInterval, &c.CycleInterval)
	setDur("retry-backoff", fc.RetryBackoff, &c.RetryBackoff)
	setDur("stale-after", fc.StaleAfter, &c.StaleAfter)
	setDur("frame-interval", fc.FrameInterval, &c.FrameInterval)
	if fc.BatchSize != nil && !isSet("batch-size") {
		c.BatchSize = *fc.BatchSize
	}
	setStr("proc-root", fc.ProcRoot, &c.ProcRoot)
	setStr("disk-path", fc.DiskPath, &c.DiskPath)
	setStr("metrics-addr", fc.MetricsAddr, &c.MetricsAddr)
	setStr("log-level", fc.LogLevel, &c.LogLevel)
	setStr("log-file", fc.LogFile, &c.LogFile)
	if fc.NoColor != nil && !isSet("no-color") {
		c.NoColor = *fc.NoColor
	}
}

// Tunables are the settings that can change while the monitor runs.
type Tunables struct {
	CycleInterval time.Duration
	StaleAfter    time.Duration
}

// Tunables extracts the runtime-adjustable part of the file, falling back
// to current for absent keys.
func (fc FileConfig) Tunables(current Tunables) Tunables {
	if fc.CycleInterval != nil && *fc.CycleInterval > 0 {
		current.CycleInterval = time.Duration(*fc.CycleInterval)
	}
	if fc.StaleAfter != nil && *fc.StaleAfter >= 0 {
		current.StaleAfter = time.Duration(*fc.StaleAfter)
	}
	return current
}
