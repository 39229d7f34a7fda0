// Package format renders sizes, percentages and durations for the terminal
// front ends.
package format
