// Package logging provides the logging interface used by the sampler, the
// probes and the front ends. It hides the zerolog backend behind a small
// Logger interface so components can be tested with a no-op logger.
package logging
