package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agbru/procwatch/internal/sysmon"
)

type fakeSystem struct {
	totals sysmon.Totals
	err    error
}

func (f fakeSystem) Collect(context.Context) (sysmon.Totals, error) {
	return f.totals, f.err
}

func TestProgramRef_SendWithoutProgram(t *testing.T) {
	ref := &programRef{}
	// nil program: Send must not block or panic
	ref.Send(NoticeMsg{Text: "reloaded"})
}

func TestFrameCmd_EmitsFrameMsg(t *testing.T) {
	msg := frameCmd(time.Millisecond)()
	if _, ok := msg.(FrameMsg); !ok {
		t.Fatalf("got %T, want FrameMsg", msg)
	}
}

func TestCollectSystemCmd(t *testing.T) {
	want := sysmon.Totals{CPUPercent: 42}
	msg := collectSystemCmd(context.Background(), fakeSystem{totals: want})()

	sm, ok := msg.(SystemMsg)
	if !ok {
		t.Fatalf("got %T, want SystemMsg", msg)
	}
	if sm.Totals.CPUPercent != 42 {
		t.Errorf("CPUPercent = %v, want 42", sm.Totals.CPUPercent)
	}
	if sm.Footprint.Goroutines == 0 {
		t.Error("expected the footprint to be read")
	}
}

func TestCollectSystemCmd_ErrorStillReports(t *testing.T) {
	msg := collectSystemCmd(context.Background(), fakeSystem{err: errors.New("gone")})()
	if _, ok := msg.(SystemMsg); !ok {
		t.Fatalf("got %T, want SystemMsg", msg)
	}
}

func TestWatchContextCmd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	msg := watchContextCmd(ctx)()
	cm, ok := msg.(ContextCancelledMsg)
	if !ok {
		t.Fatalf("got %T, want ContextCancelledMsg", msg)
	}
	if !errors.Is(cm.Err, context.Canceled) {
		t.Errorf("Err = %v, want context.Canceled", cm.Err)
	}
}
