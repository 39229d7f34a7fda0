package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Probe outcomes used as the "outcome" label.
const (
	OutcomeActive   = "active"
	OutcomeInactive = "inactive"
	OutcomePanic    = "panic"
)

// Sampler groups the collectors updated by the scheduler and the display
// loop. A nil *Sampler is valid and records nothing.
type Sampler struct {
	inFlight      prometheus.Gauge
	cycles        prometheus.Counter
	samples       *prometheus.CounterVec
	enumFailures  prometheus.Counter
	cycleDuration prometheus.Histogram
	queueDepth    prometheus.Gauge
	snapshotSize  prometheus.Gauge
}

// NewSampler creates the collectors and registers them, together with the
// footprint gauges, on reg.
func NewSampler(reg prometheus.Registerer) (*Sampler, error) {
	s := &Sampler{
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "procwatch",
			Name:      "probes_in_flight",
			Help:      "Number of process probes currently running.",
		}),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "procwatch",
			Name:      "cycles_total",
			Help:      "Completed enumerate-and-dispatch cycles.",
		}),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "procwatch",
			Name:      "samples_total",
			Help:      "Samples pushed to the result queue by outcome.",
		}, []string{"outcome"}),
		enumFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "procwatch",
			Name:      "enumeration_failures_total",
			Help:      "Failed attempts to list the process registry.",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "procwatch",
			Name:      "cycle_duration_seconds",
			Help:      "Time from enumeration until the last task of the cycle is admitted.",
			Buckets:   []float64{0.5, 1, 2, 3, 4, 6, 10, 20, 60},
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "procwatch",
			Name:      "queue_depth",
			Help:      "Samples waiting in the result queue just before the last drain.",
		}),
		snapshotSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "procwatch",
			Name:      "snapshot_processes",
			Help:      "Processes in the display snapshot after the last prune.",
		}),
	}

	collectors := []prometheus.Collector{
		s.inFlight, s.cycles, s.samples, s.enumFailures, s.cycleDuration, s.queueDepth, s.snapshotSize,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "procwatch",
			Name:      "heap_alloc_bytes",
			Help:      "Heap bytes in use by the monitor itself.",
		}, func() float64 { return float64(ReadFootprint().HeapAlloc) }),
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Sampler) ProbeStarted() {
	if s != nil {
		s.inFlight.Inc()
	}
}

// ProbeFinished records a completed probe task and its outcome label.
func (s *Sampler) ProbeFinished(outcome string) {
	if s == nil {
		return
	}
	s.inFlight.Dec()
	s.samples.WithLabelValues(outcome).Inc()
}

func (s *Sampler) CycleCompleted(d time.Duration) {
	if s == nil {
		return
	}
	s.cycles.Inc()
	s.cycleDuration.Observe(d.Seconds())
}

func (s *Sampler) EnumerationFailed() {
	if s != nil {
		s.enumFailures.Inc()
	}
}

// Observed records the consumer side: queue depth before a drain and the
// snapshot size after pruning.
func (s *Sampler) Observed(queueDepth, snapshotSize int) {
	if s == nil {
		return
	}
	s.queueDepth.Set(float64(queueDepth))
	s.snapshotSize.Set(float64(snapshotSize))
}
