package display

import (
	"sync"
	"time"

	"github.com/agbru/procwatch/internal/sample"
)

// DefaultStaleAfter disables age based pruning. Exited processes are
// dropped through SetLive instead: a full pass over a large process table
// can take longer than any fixed window, and age alone would drop live rows.
const DefaultStaleAfter time.Duration = 0

// Popper is the non-blocking read side of the result queue.
type Popper interface {
	TryPop() (sample.ProcessSample, bool)
}

// Aggregator holds the latest sample per pid. It is safe for concurrent
// use; all snapshot mutation happens under its mutex.
type Aggregator struct {
	mu         sync.Mutex
	snapshot   map[int]sample.ProcessSample
	staleAfter time.Duration
	// live is the pid set of the latest enumeration; nil until one is known.
	live map[int]struct{}
}

// New returns an empty Aggregator. A non-positive staleAfter disables age
// based pruning.
func New(staleAfter time.Duration) *Aggregator {
	return &Aggregator{
		snapshot:   make(map[int]sample.ProcessSample),
		staleAfter: staleAfter,
	}
}

// Merge stores s as the latest sample for its pid.
func (a *Aggregator) Merge(s sample.ProcessSample) {
	a.mu.Lock()
	a.snapshot[s.PID] = s
	a.mu.Unlock()
}

// DrainFrom pops up to max samples from q and merges them in pop order. A
// max <= 0 pops until q reports empty. It returns the number merged.
func (a *Aggregator) DrainFrom(q Popper, max int) int {
	n := 0
	for max <= 0 || n < max {
		s, ok := q.TryPop()
		if !ok {
			break
		}
		a.Merge(s)
		n++
	}
	return n
}

// SetLive records the pids listed by the latest enumeration. Later Prune
// calls drop every entry whose pid is not among them.
func (a *Aggregator) SetLive(pids []int) {
	live := make(map[int]struct{}, len(pids))
	for _, pid := range pids {
		live[pid] = struct{}{}
	}
	a.mu.Lock()
	a.live = live
	a.mu.Unlock()
}

// Prune drops failed samples, samples of pids missing from the latest
// enumeration and, when a stale window is set, samples older than it
// relative to now. It returns the number of entries removed.
func (a *Aggregator) Prune(now time.Time) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	removed := 0
	for pid, s := range a.snapshot {
		if s.Failed() || a.exited(pid) || (a.staleAfter > 0 && now.Sub(s.UpdatedAt) > a.staleAfter) {
			delete(a.snapshot, pid)
			removed++
		}
	}
	return removed
}

// exited must be called with a.mu held.
func (a *Aggregator) exited(pid int) bool {
	if a.live == nil {
		return false
	}
	_, ok := a.live[pid]
	return !ok
}

// Refresh runs one display frame: it drains everything queued in q, then
// prunes as of now.
func (a *Aggregator) Refresh(q Popper, now time.Time) (merged, pruned int) {
	merged = a.DrainFrom(q, 0)
	pruned = a.Prune(now)
	return merged, pruned
}

// SetStaleAfter changes the stale window used by later Prune calls.
func (a *Aggregator) SetStaleAfter(d time.Duration) {
	a.mu.Lock()
	a.staleAfter = d
	a.mu.Unlock()
}

// Get returns the sample stored for pid.
func (a *Aggregator) Get(pid int) (sample.ProcessSample, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.snapshot[pid]
	return s, ok
}

func (a *Aggregator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.snapshot)
}

// Rows returns a copy of the snapshot ordered by sorter. A nil sorter
// orders by pid.
func (a *Aggregator) Rows(sorter *Sorter) []sample.ProcessSample {
	a.mu.Lock()
	rows := make([]sample.ProcessSample, 0, len(a.snapshot))
	for _, s := range a.snapshot {
		rows = append(rows, s)
	}
	a.mu.Unlock()

	if sorter == nil {
		sorter = &Sorter{Column: SortByPID}
	}
	sorter.Sort(rows)
	return rows
}
