package ui

import (
	"os"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func keepPalette(t *testing.T) {
	t.Helper()
	saved := Current()
	t.Cleanup(func() { Use(saved) })
}

func TestInit(t *testing.T) {
	tests := []struct {
		name    string
		noColor bool
		env     *string
		want    string
	}{
		{name: "flag", noColor: true, want: "plain"},
		{name: "empty NO_COLOR", env: ptr(""), want: "plain"},
		{name: "NO_COLOR set", env: ptr("1"), want: "plain"},
		{name: "default", want: "ocean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keepPalette(t)
			// Setenv registers the restore even when the variable is then removed.
			t.Setenv("NO_COLOR", "x")
			if tt.env != nil {
				t.Setenv("NO_COLOR", *tt.env)
			} else if err := os.Unsetenv("NO_COLOR"); err != nil {
				t.Fatal(err)
			}

			Init(tt.noColor)

			if got := Current().Name; got != tt.want {
				t.Errorf("palette = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPlainHasNoEscapes(t *testing.T) {
	keepPalette(t)
	Use(Plain)

	for _, code := range []string{Heading(), Muted(), Running(), Blocked(), Dead(), Bold(), Reset()} {
		if code != "" {
			t.Errorf("unexpected escape %q", code)
		}
	}
	if _, ok := Dashboard().Highlight.(lipgloss.NoColor); !ok {
		t.Error("dashboard should be colorless")
	}
}

func TestDashboardFollowsPalette(t *testing.T) {
	keepPalette(t)
	Use(Ocean)

	if Dashboard() != OceanDashboard {
		t.Error("expected the ocean dashboard")
	}
	if Dead() != Ocean.Dead {
		t.Errorf("Dead() = %q", Dead())
	}
}

func ptr(s string) *string { return &s }
