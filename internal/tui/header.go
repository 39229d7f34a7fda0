package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/procwatch/internal/format"
)

// HeaderModel renders the top bar: title, version, uptime and the
// scheduler's activity.
type HeaderModel struct {
	startTime time.Time
	version   string
	activity  string
	paused    bool
	width     int
}

// NewHeaderModel creates a new header.
func NewHeaderModel(version string) HeaderModel {
	return HeaderModel{
		startTime: time.Now(),
		version:   version,
	}
}

// SetActivity records the scheduler state shown on the right.
func (h *HeaderModel) SetActivity(activity string) {
	h.activity = activity
}

func (h *HeaderModel) SetPaused(paused bool) {
	h.paused = paused
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// View renders the header.
func (h HeaderModel) View() string {
	titleText := "procwatch"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	title := titleStyle.Render(titleText)
	pipe := versionStyle.Render(" | ")
	uptime := elapsedStyle.Render(fmt.Sprintf("Up: %s", format.FormatExecutionDuration(time.Since(h.startTime).Truncate(time.Second))))
	leftPart := title + pipe + uptime

	var right string
	if h.paused {
		right = statusPausedStyle.Render("PAUSED")
	} else if h.activity != "" {
		right = statusRunningStyle.Render(h.activity)
	}

	innerWidth := h.width - 2
	if innerWidth < 0 {
		innerWidth = 0
	}
	gap := innerWidth - lipgloss.Width(leftPart) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return headerStyle.Width(h.width).Render(leftPart + strings.Repeat(" ", gap) + right)
}
