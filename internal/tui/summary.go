package tui

import (
	"fmt"
	"strings"

	"github.com/agbru/procwatch/internal/format"
	"github.com/agbru/procwatch/internal/metrics"
	"github.com/agbru/procwatch/internal/sysmon"
)

// SummaryModel displays host totals and the monitor's own footprint.
type SummaryModel struct {
	totals    sysmon.Totals
	footprint metrics.Footprint
	tracked   int
	width     int
}

func NewSummaryModel() SummaryModel {
	return SummaryModel{}
}

// SetWidth updates the available width.
func (m *SummaryModel) SetWidth(w int) {
	m.width = w
}

// Update stores a fresh host reading.
func (m *SummaryModel) Update(totals sysmon.Totals, fp metrics.Footprint) {
	m.totals = totals
	m.footprint = fp
}

// SetTracked records how many processes the table currently holds.
func (m *SummaryModel) SetTracked(n int) {
	m.tracked = n
}

// View renders the three summary lines inside a panel.
func (m SummaryModel) View() string {
	t := m.totals
	pipe := metricLabelStyle.Render(" | ")

	host := strings.Join([]string{
		metric("CPU", format.FormatPercent(t.CPUPercent)),
		metric("Mem", usage(t.Memory)),
		metric("Swap", usage(t.Swap)),
		metric("Disk", usage(t.Disk)),
	}, pipe)

	rx, tx := networkTotals(t.Interfaces)
	activity := strings.Join([]string{
		metric("Load", fmt.Sprintf("%.2f %.2f %.2f", t.Load.Load1, t.Load.Load5, t.Load.Load15)),
		metric("Procs", fmt.Sprintf("%d (%d running)", t.Processes.Total, t.Processes.Running)),
		metric("Net", fmt.Sprintf("rx %s tx %s", format.FormatBytes(rx), format.FormatBytes(tx))),
	}, pipe)

	self := strings.Join([]string{
		metric("Tracked", fmt.Sprintf("%d", m.tracked)),
		metric("Heap", format.FormatBytes(m.footprint.HeapAlloc)),
		metric("Goroutines", fmt.Sprintf("%d", m.footprint.Goroutines)),
		metric("GC", fmt.Sprintf("%d", m.footprint.NumGC)),
	}, pipe)

	width := m.width - 2
	if width < 0 {
		width = 0
	}
	return panelStyle.Width(width).Render(host + "\n" + activity + "\n" + self)
}

func metric(label, value string) string {
	return metricLabelStyle.Render(label+":") + " " + metricValueStyle.Render(value)
}

func usage(u sysmon.Usage) string {
	if u.Total == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%s / %s (%s)", format.FormatBytes(u.Used), format.FormatBytes(u.Total), format.FormatPercent(u.Percent))
}

// networkTotals sums the byte counters of every interface except loopback.
func networkTotals(ifaces []sysmon.Interface) (rx, tx uint64) {
	for _, iface := range ifaces {
		if iface.Name == "lo" {
			continue
		}
		rx += iface.RxBytes
		tx += iface.TxBytes
	}
	return rx, tx
}
