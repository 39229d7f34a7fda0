// Package scheduler drives periodic sampling of every process on the host.
//
// A Scheduler repeatedly enumerates pids, dispatches one probe task per pid
// with at most BatchSize tasks outstanding, and pushes every resulting sample
// to a sink (normally a queue.Queue). Errors never reach the sink: probes
// fold failures into inactive samples and enumeration failures are retried.
package scheduler
