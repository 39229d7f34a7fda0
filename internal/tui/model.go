package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/procwatch/internal/config"
	"github.com/agbru/procwatch/internal/display"
	"github.com/agbru/procwatch/internal/metrics"
	"github.com/agbru/procwatch/internal/scheduler"
	"github.com/agbru/procwatch/internal/sysmon"
)

// systemRefresh is the minimum spacing between two host readings.
const systemRefresh = time.Second

// Queue is the consumer side of the result queue.
type Queue interface {
	display.Popper
	Len() int
}

// SystemReader produces host totals.
type SystemReader interface {
	Collect(ctx context.Context) (sysmon.Totals, error)
}

// StateReader reports what the sampling scheduler is doing.
type StateReader interface {
	State() scheduler.State
}

// Deps are the components the dashboard reads from. Metrics may be nil.
type Deps struct {
	Queue      Queue
	Aggregator *display.Aggregator
	System     SystemReader
	Scheduler  StateReader
	Metrics    *metrics.Sampler
}

// LayoutManager holds terminal dimensions and provides layout calculations.
type LayoutManager struct {
	width  int
	height int
}

// Layout constants for the dashboard.
const (
	headerHeight   = 1
	summaryHeight  = 5 // three lines plus borders
	footerHeight   = 1
	minTableHeight = 3
)

// tableHeight returns the rows left for the process table, header included.
func (l LayoutManager) tableHeight() int {
	h := l.height - headerHeight - summaryHeight - footerHeight
	if h < minTableHeight {
		h = minTableHeight
	}
	return h
}

// Model is the root bubbletea model for the dashboard.
type Model struct {
	header  HeaderModel
	summary SummaryModel
	table   ProcessTable
	footer  FooterModel

	keymap KeyMap
	sorter *display.Sorter

	LayoutManager

	deps          Deps
	ctx           context.Context
	cancel        context.CancelFunc
	frameInterval time.Duration
	lastSystem    time.Time
	collecting    bool
	paused        bool
}

// NewModel creates a dashboard model. The first host reading is requested
// by Init.
func NewModel(parentCtx context.Context, deps Deps, cfg config.AppConfig, version string) Model {
	ctx, cancel := context.WithCancel(parentCtx)
	sorter := display.NewSorter()
	km := DefaultKeyMap()
	frame := cfg.FrameInterval
	if frame <= 0 {
		frame = config.DefaultFrameInterval
	}

	return Model{
		header:        NewHeaderModel(version),
		summary:       NewSummaryModel(),
		table:         NewProcessTable(sorter),
		footer:        NewFooterModel(km),
		keymap:        km,
		sorter:        sorter,
		deps:          deps,
		ctx:           ctx,
		cancel:        cancel,
		frameInterval: frame,
		lastSystem:    time.Now(),
		collecting:    true,
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		frameCmd(m.frameInterval),
		collectSystemCmd(m.ctx, m.deps.System),
		watchContextCmd(m.ctx),
	)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutPanels()
		return m, nil

	case FrameMsg:
		return m.frame(time.Time(msg))

	case SystemMsg:
		m.collecting = false
		m.summary.Update(msg.Totals, msg.Footprint)
		return m, nil

	case NoticeMsg:
		m.footer.SetNotice(msg.Text, msg.At)
		return m, nil

	case ContextCancelledMsg:
		return m, tea.Quit
	}

	return m, nil
}

// frame merges everything queued since the last frame. The table is frozen
// while paused but the queue keeps being drained.
func (m Model) frame(now time.Time) (tea.Model, tea.Cmd) {
	depth := m.deps.Queue.Len()
	m.deps.Aggregator.Refresh(m.deps.Queue, now)
	m.deps.Metrics.Observed(depth, m.deps.Aggregator.Len())
	if m.deps.Scheduler != nil {
		m.header.SetActivity(m.deps.Scheduler.State().String())
	}
	m.footer.Expire(now)
	if !m.paused {
		m.refreshRows()
	}

	cmds := []tea.Cmd{frameCmd(m.frameInterval)}
	if !m.collecting && now.Sub(m.lastSystem) >= systemRefresh {
		m.collecting = true
		m.lastSystem = now
		cmds = append(cmds, collectSystemCmd(m.ctx, m.deps.System))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) refreshRows() {
	rows := m.deps.Aggregator.Rows(m.sorter)
	m.table.SetRows(rows)
	m.summary.SetTracked(len(rows))
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Pause):
		m.paused = !m.paused
		m.header.SetPaused(m.paused)
		if !m.paused {
			m.refreshRows()
		}
		return m, nil

	case key.Matches(msg, m.keymap.SortNext):
		m.sorter.Next()
		m.refreshRows()
		return m, nil

	case key.Matches(msg, m.keymap.Reverse):
		m.sorter.Descending = !m.sorter.Descending
		m.refreshRows()
		return m, nil

	case key.Matches(msg, m.keymap.Up), key.Matches(msg, m.keymap.Down),
		key.Matches(msg, m.keymap.PageUp), key.Matches(msg, m.keymap.PageDown):
		return m, m.table.Update(msg)
	}

	return m, nil
}

// View renders the entire dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		m.summary.View(),
		m.table.View(),
		m.footer.View(),
	)
}

func (m *Model) layoutPanels() {
	m.header.SetWidth(m.width)
	m.summary.SetWidth(m.width)
	m.table.SetSize(m.width, m.tableHeight())
	m.footer.SetWidth(m.width)
}

// Dashboard owns a running bubbletea program.
type Dashboard struct {
	model Model
	ref   *programRef
}

// NewDashboard builds the dashboard. Styles are rebuilt from the current ui
// palette, so ui.Init must have been called before.
func NewDashboard(ctx context.Context, deps Deps, cfg config.AppConfig, version string) *Dashboard {
	initTUIStyles()
	return &Dashboard{
		model: NewModel(ctx, deps, cfg, version),
		ref:   &programRef{},
	}
}

// Notify shows text in the footer. It is safe to call from any goroutine.
func (d *Dashboard) Notify(text string) {
	d.ref.Send(NoticeMsg{Text: text, At: time.Now()})
}

// Run blocks until the user quits or the parent context ends.
func (d *Dashboard) Run() error {
	defer d.model.cancel()

	p := tea.NewProgram(d.model, tea.WithAltScreen())
	d.ref.SetProgram(p)
	defer d.ref.SetProgram(nil)

	_, err := p.Run()
	return err
}
