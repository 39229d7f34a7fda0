package config

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, `{"cycle_interval": "2s"}`)
	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reloaded := make(chan FileConfig, 4)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, func(fc FileConfig) { reloaded <- fc }) }()

	// Give the watcher a moment to be fully registered before writing.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`{"cycle_interval": "9s"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case fc := <-reloaded:
		if fc.CycleInterval == nil || time.Duration(*fc.CycleInterval) != 9*time.Second {
			t.Errorf("reloaded config = %+v", fc)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after writing the config file")
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestWatcherMissingDirectory(t *testing.T) {
	if _, err := NewWatcher("/nonexistent-dir-for-procwatch/cfg.json", nil); err == nil {
		t.Error("watching a missing directory should fail")
	}
}
