package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/procwatch/internal/display"
	"github.com/agbru/procwatch/internal/format"
	"github.com/agbru/procwatch/internal/sample"
)

// Fixed column widths; NAME takes whatever is left.
const (
	pidWidth     = 8
	stateWidth   = 22
	percentWidth = 8
	minNameWidth = 12
)

// ProcessTable wraps a bubbles table holding one row per sampled process.
type ProcessTable struct {
	table  table.Model
	sorter *display.Sorter
	width  int
}

// NewProcessTable creates an empty, focused table ordered by sorter.
func NewProcessTable(sorter *display.Sorter) ProcessTable {
	t := table.New(
		table.WithFocused(true),
		table.WithStyles(tableStyles),
	)
	pt := ProcessTable{table: t, sorter: sorter}
	pt.table.SetColumns(pt.columns())
	return pt
}

// SetSize resizes the table. The height includes the header row.
func (p *ProcessTable) SetSize(w, h int) {
	p.width = w
	p.table.SetWidth(w)
	p.table.SetHeight(h)
	p.table.SetColumns(p.columns())
}

// SetRows replaces the table content. Rows must already be ordered.
func (p *ProcessTable) SetRows(samples []sample.ProcessSample) {
	// Columns first: their titles carry the sort marker.
	p.table.SetColumns(p.columns())
	rows := make([]table.Row, len(samples))
	for i, s := range samples {
		rows[i] = processRow(s)
	}
	p.table.SetRows(rows)
}

// Update forwards navigation keys to the underlying table.
func (p *ProcessTable) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	p.table, cmd = p.table.Update(msg)
	return cmd
}

// SelectedPID returns the pid under the cursor.
func (p ProcessTable) SelectedPID() (int, bool) {
	row := p.table.SelectedRow()
	if row == nil {
		return 0, false
	}
	pid, err := strconv.Atoi(row[0])
	return pid, err == nil
}

func (p ProcessTable) View() string {
	return p.table.View()
}

func (p ProcessTable) columns() []table.Column {
	nameWidth := p.width - pidWidth - stateWidth - 2*percentWidth - 10
	if nameWidth < minNameWidth {
		nameWidth = minNameWidth
	}
	cols := []table.Column{
		{Title: "PID", Width: pidWidth},
		{Title: "NAME", Width: nameWidth},
		{Title: "STATE", Width: stateWidth},
		{Title: "CPU%", Width: percentWidth},
		{Title: "MEM%", Width: percentWidth},
	}
	if p.sorter == nil {
		return cols
	}
	idx := map[display.SortColumn]int{
		display.SortByPID:   0,
		display.SortByName:  1,
		display.SortByState: 2,
		display.SortByCPU:   3,
		display.SortByMEM:   4,
	}[p.sorter.Column]
	marker := " ▲"
	if p.sorter.Descending {
		marker = " ▼"
	}
	cols[idx].Title += marker
	return cols
}

func processRow(s sample.ProcessSample) table.Row {
	return table.Row{
		strconv.Itoa(s.PID),
		s.Name,
		stateLabel(s.State),
		format.FormatPercent(s.CPUPercent),
		format.FormatPercent(s.MemPercent),
	}
}

// stateLabel colors the state name when the theme defines a style for it.
func stateLabel(st sample.State) string {
	if style, ok := stateStyles[st]; ok {
		return style.Render(st.String())
	}
	return st.String()
}
