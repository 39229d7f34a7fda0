package tui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/procwatch/internal/metrics"
	"github.com/agbru/procwatch/internal/sysmon"
)

// programRef is a shared reference to the tea.Program.
// Because bubbletea copies the model on every Update, we need a pointer
// that survives copies so outside goroutines can send messages.
type programRef struct {
	mu      sync.RWMutex
	program *tea.Program
}

// SetProgram sets the tea.Program reference (thread-safe).
func (r *programRef) SetProgram(p *tea.Program) {
	r.mu.Lock()
	r.program = p
	r.mu.Unlock()
}

// Send sends a message to the bubbletea program (thread-safe). It is a
// no-op until a program is set.
func (r *programRef) Send(msg tea.Msg) {
	r.mu.RLock()
	p := r.program
	r.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// FrameMsg triggers one drain-and-prune pass.
type FrameMsg time.Time

// SystemMsg carries a host reading collected off the UI goroutine.
type SystemMsg struct {
	Totals    sysmon.Totals
	Footprint metrics.Footprint
}

// NoticeMsg shows a transient line in the footer.
type NoticeMsg struct {
	Text string
	At   time.Time
}

// ContextCancelledMsg is sent when the parent context ends.
type ContextCancelledMsg struct {
	Err error
}

// frameCmd schedules the next FrameMsg after d.
func frameCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

// collectSystemCmd reads host totals and the monitor's own footprint.
func collectSystemCmd(ctx context.Context, sys SystemReader) tea.Cmd {
	return func() tea.Msg {
		totals, _ := sys.Collect(ctx)
		return SystemMsg{Totals: totals, Footprint: metrics.ReadFootprint()}
	}
}

// watchContextCmd waits for context cancellation and sends a message.
func watchContextCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err()}
	}
}
