// Package ui holds the color palettes shared by the one-shot table output and
// the terminal dashboard. The plain-text side reads ANSI escape codes through
// the role accessors (Heading, Running, Dead...); the dashboard reads lipgloss
// colors from Dashboard. Both follow the palette chosen by Init.
package ui
