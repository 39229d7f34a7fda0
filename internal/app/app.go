package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/procwatch/internal/cli"
	"github.com/agbru/procwatch/internal/config"
	apperrors "github.com/agbru/procwatch/internal/errors"
	"github.com/agbru/procwatch/internal/logging"
	"github.com/agbru/procwatch/internal/server"
	"github.com/agbru/procwatch/internal/tui"
	"github.com/agbru/procwatch/internal/ui"
)

// Application represents the procwatch application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer) (*Application, error) {
	programName := "procwatch"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	return &Application{Config: cfg, ErrWriter: errWriter}, nil
}

// Run executes the application in the configured mode and returns the
// process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.Version {
		PrintVersion(out)
		return apperrors.ExitSuccess
	}

	ui.Init(a.Config.NoColor)

	ctx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	logger, closeLog, err := a.newLogger()
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	defer closeLog()

	mon, err := newMonitor(a.Config, logger)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitCodeFor(err)
	}
	logger.Info("procwatch starting",
		logging.String("version", Version),
		logging.String("proc_root", mon.procfs.Root()),
		logging.Int("batch_size", a.Config.BatchSize))

	switch {
	case a.Config.Once:
		err = a.runOnce(ctx, mon, out)
	case a.Config.Headless:
		err = a.runHeadless(ctx, mon)
	default:
		err = a.runTUI(ctx, mon)
	}
	if err != nil {
		logger.Error("procwatch stopped", err)
		if !apperrors.IsContextError(err) {
			fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		}
		return apperrors.ExitCodeFor(err)
	}
	return apperrors.ExitSuccess
}

// runOnce samples every process once and prints a table.
func (a *Application) runOnce(ctx context.Context, mon *monitor, out io.Writer) error {
	opts := cli.OnceOptions{
		Top:            a.Config.Top,
		SampleInterval: a.Config.SampleInterval,
		System:         mon.system,
		Progress:       a.ErrWriter,
	}
	return cli.RunOnce(ctx, mon.scheduler, out, opts)
}

// runHeadless samples continuously and serves the snapshot over HTTP until
// ctx ends. A shutdown signal is a clean exit.
func (a *Application) runHeadless(ctx context.Context, mon *monitor) error {
	srv := server.New(a.Config.MetricsAddr, mon.aggregator, mon.system, mon.httpMetrics, mon.logger.With("server"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return mon.runScheduler(gctx) })
	g.Go(func() error { return mon.frameLoop(gctx) })
	g.Go(func() error { return mon.watchConfig(gctx, nil) })
	g.Go(func() error {
		if err := srv.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	return g.Wait()
}

// runTUI runs the dashboard. Quitting the dashboard stops sampling.
func (a *Application) runTUI(ctx context.Context, mon *monitor) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dash := tui.NewDashboard(ctx, tui.Deps{
		Queue:      mon.queue,
		Aggregator: mon.aggregator,
		System:     mon.system,
		Scheduler:  mon.scheduler,
		Metrics:    mon.sampler,
	}, a.Config, Version)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return mon.runScheduler(gctx) })
	g.Go(func() error { return mon.watchConfig(gctx, dash.Notify) })
	g.Go(func() error {
		defer cancel()
		return dash.Run()
	})
	return g.Wait()
}

// newLogger builds the leveled logger. The dashboard owns the terminal, so
// in TUI mode logs go to --log-file or nowhere.
func (a *Application) newLogger() (*logging.ZerologAdapter, func(), error) {
	var w io.Writer = a.ErrWriter
	closeFn := func() {}

	tuiMode := !a.Config.Once && !a.Config.Headless
	switch {
	case a.Config.LogFile != "":
		f, err := os.OpenFile(a.Config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, apperrors.NewConfigError("open log file: %v", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	case tuiMode:
		w = io.Discard
	}

	logger, err := logging.NewLeveledLogger(w, "procwatch", a.Config.LogLevel)
	if err != nil {
		closeFn()
		return nil, nil, apperrors.NewConfigError("%v", err)
	}
	return logger, closeFn, nil
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
