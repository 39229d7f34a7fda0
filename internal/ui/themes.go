package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Palette holds the ANSI escape codes of the plain-text output (--once).
// Colors are assigned by role: process states get their own entries so a
// table reads at a glance.
type Palette struct {
	Name string

	Heading string
	Muted   string

	// Running is used for R processes, Blocked for D/T/t, Dead for Z/X and
	// unreadable entries.
	Running string
	Blocked string
	Dead    string

	Bold  string
	Reset string
}

// Ocean is the default palette: teal headings on a dark terminal.
var Ocean = Palette{
	Name:    "ocean",
	Heading: "\033[38;5;37m",
	Muted:   "\033[38;5;244m",
	Running: "\033[38;5;78m",
	Blocked: "\033[38;5;179m",
	Dead:    "\033[38;5;167m",
	Bold:    "\033[1m",
	Reset:   "\033[0m",
}

// Plain produces no escape codes. It is selected by --no-color or NO_COLOR.
var Plain = Palette{Name: "plain"}

// DashboardPalette is the lipgloss counterpart of Palette for the TUI.
type DashboardPalette struct {
	Text      lipgloss.TerminalColor
	Frame     lipgloss.TerminalColor
	Highlight lipgloss.TerminalColor
	Muted     lipgloss.TerminalColor
	Selection lipgloss.TerminalColor
	Running   lipgloss.TerminalColor
	Blocked   lipgloss.TerminalColor
	Dead      lipgloss.TerminalColor
}

// OceanDashboard matches Ocean.
var OceanDashboard = DashboardPalette{
	Text:      lipgloss.Color("#D8DEE9"),
	Frame:     lipgloss.Color("#2E8B8B"),
	Highlight: lipgloss.Color("#4FD1C5"),
	Muted:     lipgloss.Color("#6B7280"),
	Selection: lipgloss.Color("#0F2A2E"),
	Running:   lipgloss.Color("#68D391"),
	Blocked:   lipgloss.Color("#F6AD55"),
	Dead:      lipgloss.Color("#FC8181"),
}

// PlainDashboard leaves every color to the terminal.
var PlainDashboard = DashboardPalette{
	Text:      lipgloss.NoColor{},
	Frame:     lipgloss.NoColor{},
	Highlight: lipgloss.NoColor{},
	Muted:     lipgloss.NoColor{},
	Selection: lipgloss.NoColor{},
	Running:   lipgloss.NoColor{},
	Blocked:   lipgloss.NoColor{},
	Dead:      lipgloss.NoColor{},
}

var (
	mu      sync.RWMutex
	current = Ocean
)

// Current returns the active palette.
func Current() Palette {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Use replaces the active palette.
func Use(p Palette) {
	mu.Lock()
	current = p
	mu.Unlock()
}

// Dashboard returns the TUI palette paired with the active one.
func Dashboard() DashboardPalette {
	if Current().Name == Plain.Name {
		return PlainDashboard
	}
	return OceanDashboard
}

// Init picks Plain when noColor is set or NO_COLOR is present in the
// environment with any value (https://no-color.org/), and Ocean otherwise.
func Init(noColor bool) {
	if _, set := os.LookupEnv("NO_COLOR"); noColor || set {
		Use(Plain)
		return
	}
	Use(Ocean)
}

func Heading() string { return Current().Heading }
func Muted() string   { return Current().Muted }
func Running() string { return Current().Running }
func Blocked() string { return Current().Blocked }
func Dead() string    { return Current().Dead }
func Bold() string    { return Current().Bold }
func Reset() string   { return Current().Reset }
