// Package queue holds the FIFO hand-off between the sampling workers and the
// display consumer.
package queue

import (
	"sync"

	"github.com/agbru/procwatch/internal/sample"
)

// Queue is an unbounded, concurrency-safe FIFO of process samples.
// Any number of goroutines may Push while a single consumer pops.
type Queue struct {
	mu    sync.Mutex
	items []sample.ProcessSample
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{}
}

// Push appends s to the tail. It never blocks beyond the internal lock.
func (q *Queue) Push(s sample.ProcessSample) {
	q.mu.Lock()
	q.items = append(q.items, s)
	q.mu.Unlock()
}

// TryPop removes and returns the head sample. ok is false when the queue is
// empty; it never waits.
func (q *Queue) TryPop() (s sample.ProcessSample, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return sample.ProcessSample{}, false
	}
	s = q.items[0]
	q.items[0] = sample.ProcessSample{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return s, true
}

// Drain pops up to max samples in FIFO order. A max <= 0 drains everything
// present when the call starts.
func (q *Queue) Drain(max int) []sample.ProcessSample {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.items)
	if max > 0 && max < n {
		n = max
	}
	if n == 0 {
		return nil
	}
	out := make([]sample.ProcessSample, n)
	copy(out, q.items[:n])
	clear(q.items[:n])
	q.items = q.items[n:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return out
}

// Len reports the number of queued samples.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
