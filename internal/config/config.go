// Package config parses and validates the monitor's configuration.
//
// Values are resolved with the priority: command-line flags, then PROCWATCH_
// environment variables, then the JSON file named by --config, then the
// built-in defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	apperrors "github.com/agbru/procwatch/internal/errors"
)

// EnvPrefix prefixes every environment variable the configuration reads.
const EnvPrefix = "PROCWATCH_"

// Defaults.
const (
	DefaultSampleInterval = 3 * time.Second
	DefaultCycleInterval  = 2 * time.Second
	DefaultRetryBackoff   = 100 * time.Millisecond
	DefaultBatchSize      = 50
	DefaultStaleAfter     = time.Duration(0)
	DefaultFrameInterval  = 250 * time.Millisecond
	DefaultProcRoot       = "/proc"
	DefaultDiskPath       = "/"
	DefaultMetricsAddr    = ":9105"
	DefaultLogLevel       = "info"
)

var logLevels = []string{"trace", "debug", "info", "warn", "error", "disabled"}

// AppConfig aggregates every setting of the monitor.
type AppConfig struct {
	// SampleInterval is the wait between the two CPU reads of one probe.
	SampleInterval time.Duration
	// ProbeDeadline caps a single probe; zero disables the cap.
	ProbeDeadline time.Duration
	// CycleInterval is the pause between sampling cycles.
	CycleInterval time.Duration
	// RetryBackoff is the pause after a failed enumeration.
	RetryBackoff time.Duration
	// BatchSize is the dispatch batch length and concurrency bound.
	BatchSize int
	// StaleAfter also drops snapshot entries not refreshed within this
	// window; zero leaves removal to failed samples and exited pids.
	StaleAfter time.Duration
	// FrameInterval is how often the front end drains the queue.
	FrameInterval time.Duration
	// Top caps the rows printed by --once; zero prints every process.
	Top int

	ProcRoot    string
	DiskPath    string
	MetricsAddr string
	LogLevel    string
	LogFile     string
	ConfigFile  string

	Once     bool
	Headless bool
	NoColor  bool
	Version  bool
}

// Default returns the configuration used when nothing is overridden.
func Default() AppConfig {
	return AppConfig{
		SampleInterval: DefaultSampleInterval,
		CycleInterval:  DefaultCycleInterval,
		RetryBackoff:   DefaultRetryBackoff,
		BatchSize:      DefaultBatchSize,
		StaleAfter:     DefaultStaleAfter,
		FrameInterval:  DefaultFrameInterval,
		ProcRoot:       DefaultProcRoot,
		DiskPath:       DefaultDiskPath,
		MetricsAddr:    DefaultMetricsAddr,
		LogLevel:       DefaultLogLevel,
	}
}

// ParseConfig parses args (without the program name) into an AppConfig and
// validates it. Usage and flag errors are written to errorOutput. A --help
// request returns flag.ErrHelp.
func ParseConfig(programName string, args []string, errorOutput io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorOutput)
	fs.Usage = func() {
		fmt.Fprintf(errorOutput, "Usage: %s [flags]\n\n", programName)
		fmt.Fprintf(errorOutput, "Samples every process on the host and shows the busiest ones.\n\n")
		fs.PrintDefaults()
		fmt.Fprintf(errorOutput, "\nEvery flag can also be set with a %s<NAME> environment variable\n", EnvPrefix)
		fmt.Fprintf(errorOutput, "(e.g. %sBATCH_SIZE=20) or in the JSON file given to -config.\n", EnvPrefix)
	}

	config := Default()
	fs.DurationVar(&config.SampleInterval, "sample-interval", config.SampleInterval, "Wait between the two CPU reads of a probe.")
	fs.DurationVar(&config.ProbeDeadline, "probe-deadline", 0, "Maximum duration of a single probe (0 = no limit).")
	fs.DurationVar(&config.CycleInterval, "cycle-interval", config.CycleInterval, "Pause between sampling cycles.")
	fs.DurationVar(&config.RetryBackoff, "retry-backoff", config.RetryBackoff, "Pause after a failed process enumeration.")
	fs.IntVar(&config.BatchSize, "batch-size", config.BatchSize, "Processes per dispatch batch and maximum concurrent probes.")
	fs.DurationVar(&config.StaleAfter, "stale-after", config.StaleAfter, "Also drop processes not refreshed within this window (0 = never). Keep it above a full sampling pass.")
	fs.DurationVar(&config.FrameInterval, "frame-interval", config.FrameInterval, "How often the display drains new samples.")
	fs.IntVar(&config.Top, "top", 0, "Rows printed by -once (0 = all).")
	fs.StringVar(&config.ProcRoot, "proc-root", config.ProcRoot, "Mount point of the proc filesystem.")
	fs.StringVar(&config.DiskPath, "disk-path", config.DiskPath, "Mount point whose disk usage is reported.")
	fs.StringVar(&config.MetricsAddr, "metrics-addr", config.MetricsAddr, "Listen address of the headless HTTP server.")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "Log level ("+strings.Join(logLevels, ", ")+").")
	fs.StringVar(&config.LogFile, "log-file", "", "Write logs to this file instead of stderr.")
	fs.StringVar(&config.ConfigFile, "config", "", "JSON configuration file, reloaded on change.")
	fs.BoolVar(&config.Once, "once", false, "Sample every process once, print a table and exit.")
	fs.BoolVar(&config.Headless, "headless", false, "Run without a terminal UI and serve metrics over HTTP.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output.")
	fs.BoolVar(&config.Version, "version", false, "Print version information and exit.")
	fs.BoolVar(&config.Version, "V", false, "Shorthand for --version.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return AppConfig{}, err
		}
		return AppConfig{}, apperrors.NewConfigError("%v", err)
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	configFile := config.ConfigFile
	if !isFlagSet(fs, "config") {
		configFile = getEnvString("CONFIG", "")
		config.ConfigFile = configFile
	}
	if configFile != "" {
		fc, err := LoadFile(configFile)
		if err != nil {
			return AppConfig{}, err
		}
		fc.applyTo(&config, func(name string) bool { return isFlagSet(fs, name) })
	}

	applyEnvOverrides(&config, fs)

	if err := config.Validate(); err != nil {
		return AppConfig{}, err
	}
	return config, nil
}

// Validate checks the semantic consistency of the configuration.
func (c AppConfig) Validate() error {
	switch {
	case c.BatchSize < 1:
		return apperrors.NewConfigError("batch size must be at least 1, got %d", c.BatchSize)
	case c.SampleInterval <= 0:
		return apperrors.NewConfigError("sample interval must be positive, got %s", c.SampleInterval)
	case c.CycleInterval <= 0:
		return apperrors.NewConfigError("cycle interval must be positive, got %s", c.CycleInterval)
	case c.RetryBackoff <= 0:
		return apperrors.NewConfigError("retry backoff must be positive, got %s", c.RetryBackoff)
	case c.FrameInterval <= 0:
		return apperrors.NewConfigError("frame interval must be positive, got %s", c.FrameInterval)
	case c.Top < 0:
		return apperrors.NewConfigError("top must not be negative, got %d", c.Top)
	case c.StaleAfter < 0:
		return apperrors.NewConfigError("stale-after must not be negative, got %s", c.StaleAfter)
	case c.ProbeDeadline < 0:
		return apperrors.NewConfigError("probe deadline must not be negative, got %s", c.ProbeDeadline)
	case c.ProbeDeadline > 0 && c.ProbeDeadline <= c.SampleInterval:
		return apperrors.NewConfigError("probe deadline %s must exceed the sample interval %s", c.ProbeDeadline, c.SampleInterval)
	case c.ProcRoot == "":
		return apperrors.NewConfigError("proc root must not be empty")
	case c.Once && c.Headless:
		return apperrors.NewConfigError("--once and --headless are mutually exclusive")
	}
	level := strings.ToLower(c.LogLevel)
	for _, l := range logLevels {
		if l == level {
			return nil
		}
	}
	return apperrors.NewConfigError("unknown log level %q", c.LogLevel)
}
