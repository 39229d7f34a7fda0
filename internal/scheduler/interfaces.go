//go:generate mockgen -source=interfaces.go -destination=mocks/mock_interfaces.go -package=mocks

package scheduler

import (
	"context"

	"github.com/agbru/procwatch/internal/sample"
)

// Enumerator lists the pids currently known to the kernel.
type Enumerator interface {
	Pids(ctx context.Context) ([]int, error)
}

// Prober measures a single process. Implementations must not return an
// error; failures are reported as inactive samples.
type Prober interface {
	Probe(ctx context.Context, pid int) sample.ProcessSample
}

// Sink receives completed samples. Push must be safe for concurrent use.
type Sink interface {
	Push(s sample.ProcessSample)
}
