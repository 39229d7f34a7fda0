// Package metrics exposes the sampler's own instrumentation as Prometheus
// collectors and reports the monitor's runtime memory footprint.
package metrics
