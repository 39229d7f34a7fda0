package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agbru/procwatch/internal/config"
	"github.com/agbru/procwatch/internal/display"
	apperrors "github.com/agbru/procwatch/internal/errors"
	"github.com/agbru/procwatch/internal/logging"
	"github.com/agbru/procwatch/internal/metrics"
	"github.com/agbru/procwatch/internal/probe"
	"github.com/agbru/procwatch/internal/queue"
	"github.com/agbru/procwatch/internal/scheduler"
	"github.com/agbru/procwatch/internal/server"
	"github.com/agbru/procwatch/internal/sysmon"
)

// monitor is the wired sampling pipeline:
// ProcFS -> Scheduler -> Prober -> Queue -> Aggregator.
// The queue and the aggregator are created here once and handed to every
// component that needs them.
type monitor struct {
	cfg    config.AppConfig
	logger *logging.ZerologAdapter

	procfs     *probe.ProcFS
	prober     *probe.Prober
	queue      *queue.Queue
	scheduler  *scheduler.Scheduler
	aggregator *display.Aggregator
	system     *sysmon.Collector

	httpMetrics *server.Metrics
	sampler     *metrics.Sampler

	// tunables is only touched by the config watcher goroutine.
	tunables config.Tunables
}

func newMonitor(cfg config.AppConfig, logger *logging.ZerologAdapter) (*monitor, error) {
	fs, err := probe.NewProcFS(cfg.ProcRoot)
	if err != nil {
		return nil, err
	}

	httpMetrics := server.NewMetrics()
	sampler, err := metrics.NewSampler(httpMetrics.Registry())
	if err != nil {
		return nil, apperrors.WrapError(err, "register sampler metrics")
	}

	prober := probe.NewProber(fs, probe.Config{
		SampleInterval: cfg.SampleInterval,
		Deadline:       cfg.ProbeDeadline,
		NameTTL:        probe.DefaultNameTTL,
	}, logger.With("probe"))

	q := queue.New()
	agg := display.New(cfg.StaleAfter)
	sched := scheduler.New(fs, prober, q, scheduler.Config{
		BatchSize:     cfg.BatchSize,
		CycleInterval: cfg.CycleInterval,
		RetryBackoff:  cfg.RetryBackoff,
	},
		scheduler.WithLogger(logger.With("scheduler")),
		scheduler.WithMetrics(sampler),
		scheduler.WithPidListener(agg),
	)

	return &monitor{
		cfg:         cfg,
		logger:      logger,
		procfs:      fs,
		prober:      prober,
		queue:       q,
		scheduler:   sched,
		aggregator:  agg,
		system:      sysmon.NewCollector(fs.Root(), cfg.DiskPath),
		httpMetrics: httpMetrics,
		sampler:     sampler,
		tunables: config.Tunables{
			CycleInterval: cfg.CycleInterval,
			StaleAfter:    cfg.StaleAfter,
		},
	}, nil
}

// runScheduler samples until ctx ends. Cancellation is the normal way to
// stop, so it is not reported as an error.
func (m *monitor) runScheduler(ctx context.Context) error {
	if err := m.scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// frameLoop is the display frame of the headless mode: every interval it
// drains the queue into the aggregator and prunes it.
func (m *monitor) frameLoop(ctx context.Context) error {
	ticker := time.NewTicker(m.cfg.FrameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			m.frame(now)
		}
	}
}

func (m *monitor) frame(now time.Time) {
	depth := m.queue.Len()
	merged, pruned := m.aggregator.Refresh(m.queue, now)
	m.sampler.Observed(depth, m.aggregator.Len())
	if merged > 0 || pruned > 0 {
		m.logger.Debug("frame",
			logging.Int("merged", merged),
			logging.Int("pruned", pruned),
			logging.Int("tracked", m.aggregator.Len()))
	}
}

// watchConfig reloads the runtime tunables whenever the config file
// changes. notify, when set, receives a one-line description of the change.
func (m *monitor) watchConfig(ctx context.Context, notify func(string)) error {
	if m.cfg.ConfigFile == "" {
		return nil
	}
	w, err := config.NewWatcher(m.cfg.ConfigFile, m.logger.With("config"))
	if err != nil {
		m.logger.Error("config watcher unavailable", err, logging.String("path", m.cfg.ConfigFile))
		return nil
	}
	err = w.Run(ctx, func(fc config.FileConfig) {
		msg := m.applyTunables(fc)
		if notify != nil {
			notify(msg)
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (m *monitor) applyTunables(fc config.FileConfig) string {
	next := fc.Tunables(m.tunables)
	m.scheduler.SetCycleInterval(next.CycleInterval)
	m.aggregator.SetStaleAfter(next.StaleAfter)
	m.tunables = next
	m.logger.Info("tunables applied",
		logging.Duration("cycle_interval", next.CycleInterval),
		logging.Duration("stale_after", next.StaleAfter))
	return fmt.Sprintf("config reloaded: cycle %s, stale after %s", next.CycleInterval, next.StaleAfter)
}
