package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/procwatch/internal/sample"
	"github.com/agbru/procwatch/internal/ui"
)

var (
	panelStyle         lipgloss.Style
	headerStyle        lipgloss.Style
	titleStyle         lipgloss.Style
	versionStyle       lipgloss.Style
	elapsedStyle       lipgloss.Style
	metricLabelStyle   lipgloss.Style
	metricValueStyle   lipgloss.Style
	footerKeyStyle     lipgloss.Style
	footerDescStyle    lipgloss.Style
	noticeStyle        lipgloss.Style
	statusRunningStyle lipgloss.Style
	statusPausedStyle  lipgloss.Style
	tableStyles        table.Styles
	stateStyles        map[sample.State]lipgloss.Style
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds all styles from the active ui palette. It runs at
// package init and again in NewDashboard, after ui.Init.
func initTUIStyles() {
	p := ui.Dashboard()

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Frame).
		Foreground(p.Text)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Highlight).
		Padding(0, 1)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Highlight)
	versionStyle = lipgloss.NewStyle().Foreground(p.Muted)
	elapsedStyle = lipgloss.NewStyle().Foreground(p.Text)

	metricLabelStyle = lipgloss.NewStyle().Foreground(p.Muted)
	metricValueStyle = lipgloss.NewStyle().Foreground(p.Highlight).Bold(true)

	footerKeyStyle = lipgloss.NewStyle().Foreground(p.Highlight).Bold(true)
	footerDescStyle = lipgloss.NewStyle().Foreground(p.Muted)
	noticeStyle = lipgloss.NewStyle().Foreground(p.Blocked)

	statusRunningStyle = lipgloss.NewStyle().Foreground(p.Running).Bold(true)
	statusPausedStyle = lipgloss.NewStyle().Foreground(p.Blocked).Bold(true)

	tableStyles = table.DefaultStyles()
	tableStyles.Header = tableStyles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(p.Frame).
		BorderBottom(true).
		Foreground(p.Highlight).
		Bold(true)
	tableStyles.Cell = tableStyles.Cell.Foreground(p.Text)
	tableStyles.Selected = tableStyles.Selected.
		Foreground(p.Highlight).
		Background(p.Selection).
		Bold(false)

	running := lipgloss.NewStyle().Foreground(p.Running)
	blocked := lipgloss.NewStyle().Foreground(p.Blocked)
	dead := lipgloss.NewStyle().Foreground(p.Dead)
	stateStyles = map[sample.State]lipgloss.Style{
		sample.StateRunning:              running,
		sample.StateUninterruptibleSleep: blocked,
		sample.StateStopped:              blocked,
		sample.StateTracingStop:          blocked,
		sample.StateZombie:               dead,
		sample.StateDead:                 dead,
		sample.StateError:                dead,
	}
}
