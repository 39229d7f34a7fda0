// Package probe measures individual processes and lists the processes
// currently known to the kernel.
//
// A Prober turns one pid into one sample.ProcessSample using two-point CPU
// sampling. It never returns an error: any failure is folded into an
// inactive sample carrying sample.CPUSentinel. Raw counters come from a
// Source, normally a ProcFS rooted at /proc.
package probe
