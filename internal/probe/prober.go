package probe

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	apperrors "github.com/agbru/procwatch/internal/errors"
	"github.com/agbru/procwatch/internal/logging"
	"github.com/agbru/procwatch/internal/sample"
)

const (
	// DefaultSampleInterval is the wait between the two CPU reads.
	DefaultSampleInterval = 3 * time.Second
	// DefaultNameTTL bounds how long a resolved process name is reused.
	DefaultNameTTL = 5 * time.Minute
)

var (
	errNoSystemDelta = errors.New("system cpu time did not advance")
	errNegativeDelta = errors.New("process cpu time went backwards")
	errPIDReused     = errors.New("process start time changed between reads")
	errNoCores       = errors.New("no logical cores reported")
)

// Config tunes a Prober.
type Config struct {
	SampleInterval time.Duration
	// Deadline caps a whole probe. Zero means the probe is bounded only by
	// the caller's context.
	Deadline time.Duration
	NameTTL  time.Duration
}

// DefaultConfig returns the configuration used by the command.
func DefaultConfig() Config {
	return Config{
		SampleInterval: DefaultSampleInterval,
		NameTTL:        DefaultNameTTL,
	}
}

// Prober measures one process at a time. It is safe for concurrent use.
type Prober struct {
	src    Source
	cfg    Config
	names  *cache.Cache
	logger logging.Logger
}

// NewProber returns a Prober reading from src. A nil logger discards output.
func NewProber(src Source, cfg Config, logger logging.Logger) *Prober {
	if cfg.NameTTL <= 0 {
		cfg.NameTTL = DefaultNameTTL
	}
	if cfg.SampleInterval < 0 {
		cfg.SampleInterval = 0
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Prober{
		src:    src,
		cfg:    cfg,
		names:  cache.New(cfg.NameTTL, 2*cfg.NameTTL),
		logger: logger,
	}
}

// Probe samples pid. The call blocks for the configured sample interval
// unless ctx ends first, in which case the sample is inactive.
func (p *Prober) Probe(ctx context.Context, pid int) sample.ProcessSample {
	if pid <= 0 {
		p.logFailure(pid, apperrors.StageStat, apperrors.ErrInvalidPID)
		return sample.Inactive(pid, sample.StateError)
	}
	if p.cfg.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Deadline)
		defer cancel()
	}

	first, err := p.src.ProcStat(pid)
	if err != nil {
		p.logFailure(pid, apperrors.StageStat, err)
		return sample.Inactive(pid, sample.StateError)
	}

	s := sample.ProcessSample{
		PID:       pid,
		Name:      p.resolveName(pid, first),
		State:     sample.ParseStateCode(first.State),
		StartTime: first.StartTime,
	}
	fail := func(stage apperrors.ProbeStage, err error) sample.ProcessSample {
		p.logFailure(pid, stage, err)
		s.CPUPercent = sample.CPUSentinel
		s.MemPercent = 0
		s.Active = false
		s.UpdatedAt = time.Now()
		return s
	}

	cores, err := p.src.LogicalCores()
	if err != nil {
		return fail(apperrors.StageCores, err)
	}
	if cores <= 0 {
		return fail(apperrors.StageCores, errNoCores)
	}
	sys1, err := p.src.SystemCPUSeconds()
	if err != nil {
		return fail(apperrors.StageCPU, err)
	}

	if err := wait(ctx, p.cfg.SampleInterval); err != nil {
		return fail(apperrors.StageWait, err)
	}

	second, err := p.src.ProcStat(pid)
	if err != nil {
		// The pid is gone; the first read's state no longer describes it.
		s.State = sample.StateError
		return fail(apperrors.StageStat, err)
	}
	if second.StartTime != first.StartTime {
		return fail(apperrors.StageDelta, errPIDReused)
	}
	sys2, err := p.src.SystemCPUSeconds()
	if err != nil {
		return fail(apperrors.StageCPU, err)
	}
	s.State = sample.ParseStateCode(second.State)

	cpu, err := cpuPercent(second.CPUSeconds-first.CPUSeconds, sys2-sys1, cores)
	if err != nil {
		return fail(apperrors.StageDelta, err)
	}
	s.CPUPercent = cpu
	s.MemPercent = p.memPercent(pid)
	s.Active = true
	s.UpdatedAt = time.Now()
	return s
}

// cpuPercent is 100 * dProc / dSys * cores. Both deltas share a unit, so
// the clock tick rate does not appear.
func cpuPercent(dProc, dSys float64, cores int) (float64, error) {
	if dSys <= 0 {
		return sample.CPUSentinel, errNoSystemDelta
	}
	if dProc < 0 {
		return sample.CPUSentinel, errNegativeDelta
	}
	return 100 * dProc / dSys * float64(cores), nil
}

// memPercent never fails; missing data yields 0.
func (p *Prober) memPercent(pid int) float64 {
	rss, err := p.src.RSSBytes(pid)
	if err != nil {
		p.logFailure(pid, apperrors.StageStatus, err)
		return 0
	}
	total, err := p.src.MemTotalBytes()
	if err != nil || total == 0 {
		return 0
	}
	return float64(rss) / float64(total) * 100
}

func (p *Prober) resolveName(pid int, st ProcStat) string {
	key := fmt.Sprintf("%d:%d", pid, st.StartTime)
	if v, ok := p.names.Get(key); ok {
		return v.(string)
	}
	name := st.Comm
	if args, err := p.src.CmdLine(pid); err == nil {
		if n := nameFromArgs(args); n != "" {
			name = n
		}
	}
	if name == "" {
		name = sample.UnknownName
	}
	p.names.Set(key, name, cache.DefaultExpiration)
	return name
}

// nameFromArgs returns the basename of the first non-empty argument.
func nameFromArgs(args []string) string {
	for _, a := range args {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if base := path.Base(a); base != "/" && base != "." {
			return base
		}
		return a
	}
	return ""
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Prober) logFailure(pid int, stage apperrors.ProbeStage, err error) {
	p.logger.Debug("probe failed",
		logging.Int("pid", pid),
		logging.Err(apperrors.NewProbeError(pid, stage, err)))
}
