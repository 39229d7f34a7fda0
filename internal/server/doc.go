// Package server exposes the monitor over HTTP when it runs headless:
// Prometheus metrics, the current process snapshot and host totals.
package server
