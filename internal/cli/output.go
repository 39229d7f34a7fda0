// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//     Examples: [DisplayProcessTable], [DisplaySystemSummary].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatProcessRow].

package cli

import (
	"fmt"
	"io"

	"github.com/agbru/procwatch/internal/format"
	"github.com/agbru/procwatch/internal/sample"
	"github.com/agbru/procwatch/internal/sysmon"
	"github.com/agbru/procwatch/internal/ui"
)

// Column widths of the plain-text process table.
const (
	pidColumnWidth   = 7
	nameColumnWidth  = 24
	stateColumnWidth = 20
	pctColumnWidth   = 7
)

// FormatProcessRow renders one sample as an uncolored, fixed-width line.
// Names longer than the column are cut with a trailing "~".
func FormatProcessRow(s sample.ProcessSample) string {
	return fmt.Sprintf("%*d  %-*s  %-*s  %*s  %*s",
		pidColumnWidth, s.PID,
		nameColumnWidth, truncate(s.Name, nameColumnWidth),
		stateColumnWidth, s.State.String(),
		pctColumnWidth, format.FormatPercent(s.CPUPercent),
		pctColumnWidth, format.FormatPercent(s.MemPercent))
}

// DisplayProcessTable writes a header and one line per row. Rows must
// already be ordered.
func DisplayProcessTable(out io.Writer, rows []sample.ProcessSample) {
	header := fmt.Sprintf("%*s  %-*s  %-*s  %*s  %*s",
		pidColumnWidth, "PID",
		nameColumnWidth, "NAME",
		stateColumnWidth, "STATE",
		pctColumnWidth, "CPU%",
		pctColumnWidth, "MEM%")
	fmt.Fprintf(out, "%s%s%s\n", ui.Bold()+ui.Heading(), header, ui.Reset())

	for _, s := range rows {
		color := stateColor(s.State)
		if color == "" {
			fmt.Fprintln(out, FormatProcessRow(s))
			continue
		}
		fmt.Fprintf(out, "%s%s%s\n", color, FormatProcessRow(s), ui.Reset())
	}
}

// DisplaySystemSummary writes host totals as a short block of labelled
// lines. Sections that failed to read are reported as unavailable.
func DisplaySystemSummary(out io.Writer, t sysmon.Totals) {
	label := func(name string) string {
		return fmt.Sprintf("%s%-10s%s", ui.Muted(), name, ui.Reset())
	}

	fmt.Fprintf(out, "%s %s\n", label("CPU"), format.FormatPercent(t.CPUPercent))
	fmt.Fprintf(out, "%s %s\n", label("Memory"), usageLine(t.Memory, t.Errors[sysmon.SectionMemory]))
	fmt.Fprintf(out, "%s %s\n", label("Swap"), usageLine(t.Swap, t.Errors[sysmon.SectionSwap]))
	fmt.Fprintf(out, "%s %s\n", label("Disk"), usageLine(t.Disk, t.Errors[sysmon.SectionDisk]))
	fmt.Fprintf(out, "%s %.2f %.2f %.2f\n", label("Load"), t.Load.Load1, t.Load.Load5, t.Load.Load15)
	fmt.Fprintf(out, "%s %d total, %d running\n", label("Processes"), t.Processes.Total, t.Processes.Running)
	for _, iface := range t.Interfaces {
		addr := iface.IPv4
		if addr == "" {
			addr = "-"
		}
		fmt.Fprintf(out, "%s %s %s rx %s tx %s\n", label("Net"), iface.Name, addr,
			format.FormatBytes(iface.RxBytes), format.FormatBytes(iface.TxBytes))
	}
}

func usageLine(u sysmon.Usage, failure string) string {
	if failure != "" {
		return fmt.Sprintf("%sunavailable%s (%s)", ui.Dead(), ui.Reset(), failure)
	}
	return fmt.Sprintf("%s / %s (%s)", format.FormatBytes(u.Used), format.FormatBytes(u.Total), format.FormatPercent(u.Percent))
}

func stateColor(st sample.State) string {
	switch st {
	case sample.StateRunning:
		return ui.Running()
	case sample.StateUninterruptibleSleep, sample.StateStopped, sample.StateTracingStop:
		return ui.Blocked()
	case sample.StateZombie, sample.StateDead, sample.StateError:
		return ui.Dead()
	default:
		return ""
	}
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "~"
}
