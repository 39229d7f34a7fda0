package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/procwatch/internal/display"
	"github.com/agbru/procwatch/internal/sample"
	"github.com/agbru/procwatch/internal/sysmon"
)

// Fetcher runs one complete sampling pass over every process.
type Fetcher interface {
	FetchOnce(ctx context.Context) ([]sample.ProcessSample, error)
}

// SystemReader produces host totals.
type SystemReader interface {
	Collect(ctx context.Context) (sysmon.Totals, error)
}

// OnceOptions tunes RunOnce.
type OnceOptions struct {
	// Top caps the printed rows; zero prints all of them.
	Top int
	// Progress receives the spinner animation; nil disables it.
	Progress io.Writer
	// SampleInterval is shown while waiting.
	SampleInterval time.Duration
	// System, when set, adds a host summary above the table.
	System SystemReader
}

// RunOnce samples every process once and prints the active ones, busiest
// first. Failed probes are only counted in the closing line.
func RunOnce(ctx context.Context, f Fetcher, out io.Writer, opts OnceOptions) error {
	var sp Spinner
	if opts.Progress != nil {
		sp = newSpinner(spinner.WithWriter(opts.Progress))
		sp.UpdateSuffix(fmt.Sprintf(" Sampling processes over %s...", opts.SampleInterval))
		sp.Start()
	}
	samples, err := f.FetchOnce(ctx)
	if sp != nil {
		sp.Stop()
	}
	if err != nil {
		return err
	}

	rows := make([]sample.ProcessSample, 0, len(samples))
	for _, s := range samples {
		if s.Active {
			rows = append(rows, s)
		}
	}
	display.NewSorter().Sort(rows)

	if opts.System != nil {
		totals, err := opts.System.Collect(ctx)
		if err != nil {
			return err
		}
		DisplaySystemSummary(out, totals)
		fmt.Fprintln(out)
	}

	shown := rows
	if opts.Top > 0 && len(shown) > opts.Top {
		shown = shown[:opts.Top]
	}
	DisplayProcessTable(out, shown)
	fmt.Fprintf(out, "\n%d of %d processes shown, %d unreadable\n", len(shown), len(rows), len(samples)-len(rows))
	return nil
}
