package tui

import (
	"slices"
	"testing"

	"github.com/charmbracelet/bubbles/key"
)

func TestDefaultKeyMap_AllBindingsDefined(t *testing.T) {
	km := DefaultKeyMap()

	bindings := []struct {
		name    string
		binding key.Binding
	}{
		{"Quit", km.Quit},
		{"Pause", km.Pause},
		{"SortNext", km.SortNext},
		{"Reverse", km.Reverse},
		{"Up", km.Up},
		{"Down", km.Down},
		{"PageUp", km.PageUp},
		{"PageDown", km.PageDown},
	}

	for _, b := range bindings {
		t.Run(b.name, func(t *testing.T) {
			if !b.binding.Enabled() {
				t.Errorf("expected %s binding to be enabled", b.name)
			}
			keys := b.binding.Keys()
			if len(keys) == 0 {
				t.Errorf("expected %s binding to have at least one key", b.name)
			}
		})
	}
}

func TestDefaultKeyMap_QuitKeys(t *testing.T) {
	quit := DefaultKeyMap().Quit
	for _, k := range []string{"q", "ctrl+c", "esc"} {
		if !slices.Contains(quit.Keys(), k) {
			t.Errorf("Quit binding lacks %q", k)
		}
	}
}

func TestDefaultKeyMap_NoOverlap(t *testing.T) {
	km := DefaultKeyMap()
	seen := map[string]string{}
	for name, b := range map[string]key.Binding{
		"Quit": km.Quit, "Pause": km.Pause, "SortNext": km.SortNext, "Reverse": km.Reverse,
		"Up": km.Up, "Down": km.Down, "PageUp": km.PageUp, "PageDown": km.PageDown,
	} {
		for _, k := range b.Keys() {
			if other, dup := seen[k]; dup {
				t.Errorf("key %q bound to both %s and %s", k, other, name)
			}
			seen[k] = name
		}
	}
}
