// Package display keeps the consumer-side view of the process table: a
// pid-keyed snapshot fed from the result queue, pruned of dead and stale
// entries, and rendered through a Sorter.
package display
