// Package sample defines the per-process measurement that flows from the
// probes, through the result queue, into the display aggregator.
package sample
