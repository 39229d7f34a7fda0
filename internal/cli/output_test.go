package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/agbru/procwatch/internal/sample"
	"github.com/agbru/procwatch/internal/sysmon"
	"github.com/agbru/procwatch/internal/ui"
)

func noColor(t *testing.T) {
	t.Helper()
	saved := ui.Current()
	ui.Use(ui.Plain)
	t.Cleanup(func() { ui.Use(saved) })
}

func TestFormatProcessRow(t *testing.T) {
	tests := []struct {
		name     string
		in       sample.ProcessSample
		contains []string
	}{
		{
			name:     "active",
			in:       sample.ProcessSample{PID: 42, Name: "nginx", State: sample.StateSleeping, CPUPercent: 12.5, MemPercent: 1.5, Active: true},
			contains: []string{"     42", "nginx", "Sleeping", "12.5%", "1.5%"},
		},
		{
			name:     "failed measurement",
			in:       sample.Inactive(7, sample.StateError),
			contains: []string{"7", "Unknown", "Error", "n/a"},
		},
		{
			name:     "long name is cut",
			in:       sample.ProcessSample{PID: 1, Name: strings.Repeat("x", 40), State: sample.StateRunning, Active: true},
			contains: []string{strings.Repeat("x", nameColumnWidth-1) + "~"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatProcessRow(tt.in)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("FormatProcessRow() = %q, missing %q", got, want)
				}
			}
		})
	}
}

func TestDisplayProcessTable(t *testing.T) {
	noColor(t)
	var buf bytes.Buffer
	DisplayProcessTable(&buf, []sample.ProcessSample{
		{PID: 200, Name: "b", State: sample.StateRunning, CPUPercent: 80, Active: true},
		{PID: 100, Name: "a", State: sample.StateSleeping, CPUPercent: 1, Active: true},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "PID") || !strings.Contains(lines[0], "CPU%") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "200") || !strings.Contains(lines[2], "100") {
		t.Error("rows must keep the given order")
	}
}

func TestDisplayProcessTable_ColorsByState(t *testing.T) {
	saved := ui.Current()
	ui.Use(ui.Ocean)
	t.Cleanup(func() { ui.Use(saved) })

	var buf bytes.Buffer
	DisplayProcessTable(&buf, []sample.ProcessSample{
		{PID: 9, Name: "defunct", State: sample.StateZombie, Active: true},
	})
	if !strings.Contains(buf.String(), ui.Ocean.Dead) {
		t.Error("zombie rows should use the dead color")
	}
}

func TestDisplaySystemSummary(t *testing.T) {
	noColor(t)
	var buf bytes.Buffer
	DisplaySystemSummary(&buf, sysmon.Totals{
		CPUPercent: 37.5,
		Memory:     sysmon.Usage{Total: 8 << 30, Used: 2 << 30, Percent: 25},
		Processes:  sysmon.ProcessCounts{Total: 312, Running: 3},
		Interfaces: []sysmon.Interface{{Name: "eth0", IPv4: "10.0.0.2", RxBytes: 2048, TxBytes: 512}},
		Errors:     map[string]string{sysmon.SectionDisk: "no such mount"},
	})

	out := buf.String()
	for _, want := range []string{
		"37.5%",
		"2.00 GB / 8.00 GB (25.0%)",
		"unavailable (no such mount)",
		"312 total, 3 running",
		"eth0 10.0.0.2 rx 2.00 KB tx 512 B",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
