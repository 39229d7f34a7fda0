package scheduler

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/agbru/procwatch/internal/logging"
	"github.com/agbru/procwatch/internal/metrics"
	"github.com/agbru/procwatch/internal/sample"
)

const (
	DefaultBatchSize     = 50
	DefaultCycleInterval = 2 * time.Second
	DefaultRetryBackoff  = 100 * time.Millisecond
)

// State is the phase of the sampling loop.
type State int32

const (
	StateIdle State = iota
	StateEnumerating
	StateDispatching
	StateWaiting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEnumerating:
		return "enumerating"
	case StateDispatching:
		return "dispatching"
	case StateWaiting:
		return "waiting"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Config tunes a Scheduler. Zero fields take the defaults.
type Config struct {
	// BatchSize is both the dispatch batch length and the maximum number
	// of probe tasks outstanding at once.
	BatchSize     int
	CycleInterval time.Duration
	RetryBackoff  time.Duration
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.CycleInterval <= 0 {
		c.CycleInterval = DefaultCycleInterval
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	return c
}

// Option configures optional collaborators.
type Option func(*Scheduler)

// WithLogger sets the logger. The default discards output.
func WithLogger(l logging.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithMetrics records loop activity on m.
func WithMetrics(m *metrics.Sampler) Option {
	return func(s *Scheduler) { s.metrics = m }
}

// WithTracer overrides the tracer taken from the global otel provider.
func WithTracer(t trace.Tracer) Option {
	return func(s *Scheduler) { s.tracer = t }
}

// PidListener receives the pid list of every successful enumeration, so a
// consumer can tell exited processes from ones not yet resampled.
type PidListener interface {
	SetLive(pids []int)
}

// WithPidListener publishes each cycle's pid list to l before dispatch.
func WithPidListener(l PidListener) Option {
	return func(s *Scheduler) { s.listener = l }
}

// Scheduler runs the Idle, Enumerating, Dispatching, Waiting loop.
type Scheduler struct {
	enum   Enumerator
	prober Prober
	sink   Sink

	batchSize     int
	retryBackoff  time.Duration
	cycleInterval atomic.Int64
	state         atomic.Int32

	logger   logging.Logger
	metrics  *metrics.Sampler
	tracer   trace.Tracer
	listener PidListener
}

// New returns a Scheduler feeding sink with samples of every pid enum
// reports.
func New(enum Enumerator, prober Prober, sink Sink, cfg Config, opts ...Option) *Scheduler {
	cfg = cfg.withDefaults()
	s := &Scheduler{
		enum:         enum,
		prober:       prober,
		sink:         sink,
		batchSize:    cfg.BatchSize,
		retryBackoff: cfg.RetryBackoff,
		logger:       logging.Nop{},
		tracer:       otel.Tracer("github.com/agbru/procwatch/internal/scheduler"),
	}
	s.cycleInterval.Store(int64(cfg.CycleInterval))
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current loop phase.
func (s *Scheduler) State() State { return State(s.state.Load()) }

func (s *Scheduler) setState(st State) { s.state.Store(int32(st)) }

// CycleInterval returns the pause between cycles.
func (s *Scheduler) CycleInterval() time.Duration {
	return time.Duration(s.cycleInterval.Load())
}

// SetCycleInterval changes the pause between cycles. It takes effect at the
// next Waiting phase. Non-positive values are ignored.
func (s *Scheduler) SetCycleInterval(d time.Duration) {
	if d > 0 {
		s.cycleInterval.Store(int64(d))
	}
}

// Run samples until ctx is done. It returns ctx.Err() once every probe task
// it started has finished.
func (s *Scheduler) Run(ctx context.Context) error {
	g := new(errgroup.Group)
	g.SetLimit(s.batchSize)
	defer s.setState(StateIdle)

	s.logger.Info("sampling started",
		logging.Int("batch_size", s.batchSize),
		logging.Duration("cycle_interval", s.CycleInterval()))

	for ctx.Err() == nil {
		s.cycle(ctx, g)
		if ctx.Err() != nil {
			break
		}
		s.setState(StateWaiting)
		sleep(ctx, s.CycleInterval())
		s.setState(StateIdle)
	}

	_ = g.Wait()
	s.logger.Info("sampling stopped")
	return ctx.Err()
}

// cycle enumerates (retrying on failure) and dispatches one probe task per
// pid. It returns once the last task has been admitted, not when it ends.
func (s *Scheduler) cycle(ctx context.Context, g *errgroup.Group) {
	start := time.Now()
	spanCtx, span := s.tracer.Start(ctx, "sampling.cycle")
	defer span.End()

	pids, ok := s.enumerate(spanCtx)
	if !ok {
		span.SetStatus(codes.Error, "cancelled during enumeration")
		return
	}
	span.SetAttributes(attribute.Int("procwatch.pids", len(pids)))
	if s.listener != nil {
		s.listener.SetLive(pids)
	}

	s.setState(StateDispatching)
	dispatched := s.dispatch(ctx, g, pids)
	span.SetAttributes(attribute.Int("procwatch.dispatched", dispatched))

	s.metrics.CycleCompleted(time.Since(start))
	s.logger.Debug("cycle dispatched",
		logging.Int("pids", len(pids)),
		logging.Int("dispatched", dispatched),
		logging.Duration("elapsed", time.Since(start)))
}

// enumerate retries until it gets a pid list or ctx ends.
func (s *Scheduler) enumerate(ctx context.Context) ([]int, bool) {
	for {
		if ctx.Err() != nil {
			return nil, false
		}
		s.setState(StateEnumerating)
		pids, err := s.enum.Pids(ctx)
		if err == nil {
			return pids, true
		}
		if ctx.Err() != nil {
			return nil, false
		}
		s.metrics.EnumerationFailed()
		s.logger.Error("process enumeration failed", err,
			logging.Duration("retry_in", s.retryBackoff))
		sleep(ctx, s.retryBackoff)
	}
}

// dispatch submits pids batch by batch. g.Go blocks while batchSize tasks
// are outstanding, so a later batch is only admitted as earlier tasks end.
func (s *Scheduler) dispatch(ctx context.Context, g *errgroup.Group, pids []int) int {
	n := 0
	for i, batch := range batches(pids, s.batchSize) {
		for _, pid := range batch {
			if ctx.Err() != nil {
				return n
			}
			g.Go(s.task(ctx, pid))
			n++
		}
		s.logger.Debug("batch admitted", logging.Int("batch", i), logging.Int("size", len(batch)))
	}
	return n
}

// task probes pid and always pushes exactly one sample, even when the
// probe panics.
func (s *Scheduler) task(ctx context.Context, pid int) func() error {
	return func() error {
		s.metrics.ProbeStarted()
		var smp sample.ProcessSample
		outcome := metrics.OutcomeInactive
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("probe panicked", fmt.Errorf("%v", r), logging.Int("pid", pid))
				smp = sample.Inactive(pid, sample.StateError)
				outcome = metrics.OutcomePanic
			}
			s.sink.Push(smp)
			s.metrics.ProbeFinished(outcome)
		}()

		smp = s.prober.Probe(ctx, pid)
		if smp.Active {
			outcome = metrics.OutcomeActive
		}
		return nil
	}
}

// FetchOnce runs a single enumerate-and-probe pass with the same bound on
// outstanding tasks and returns every sample sorted by pid. Enumeration is
// not retried.
func (s *Scheduler) FetchOnce(ctx context.Context) ([]sample.ProcessSample, error) {
	ctx, span := s.tracer.Start(ctx, "sampling.fetch_once")
	defer span.End()

	pids, err := s.enum.Pids(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "enumeration failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("procwatch.pids", len(pids)))

	var (
		mu  sync.Mutex
		out = make([]sample.ProcessSample, 0, len(pids))
	)
	collector := &Scheduler{
		prober:  s.prober,
		sink:    sinkFunc(func(smp sample.ProcessSample) { mu.Lock(); out = append(out, smp); mu.Unlock() }),
		logger:  s.logger,
		metrics: s.metrics,
	}

	g := new(errgroup.Group)
	g.SetLimit(s.batchSize)
	for _, batch := range batches(pids, s.batchSize) {
		for _, pid := range batch {
			if ctx.Err() != nil {
				break
			}
			g.Go(collector.task(ctx, pid))
		}
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(out, func(a, b sample.ProcessSample) int { return a.PID - b.PID })
	return out, nil
}

type sinkFunc func(sample.ProcessSample)

func (f sinkFunc) Push(s sample.ProcessSample) { f(s) }

// batches splits pids into consecutive slices of at most size elements.
func batches(pids []int, size int) [][]int {
	if size <= 0 {
		size = DefaultBatchSize
	}
	out := make([][]int, 0, (len(pids)+size-1)/size)
	for len(pids) > 0 {
		n := min(size, len(pids))
		out = append(out, pids[:n:n])
		pids = pids[n:]
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
