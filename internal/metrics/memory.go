package metrics

import "runtime"

// Footprint is a point-in-time reading of the monitor's own memory use.
type Footprint struct {
	HeapAlloc   uint64 // bytes in use by the monitor
	Sys         uint64 // total bytes obtained from the OS
	NumGC       uint32
	Goroutines  int
	HeapObjects uint64
}

// ReadFootprint reads runtime memory statistics. Probes park one goroutine
// each during their wait, so Goroutines tracks in-flight work as well.
func ReadFootprint() Footprint {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return Footprint{
		HeapAlloc:   m.HeapAlloc,
		Sys:         m.Sys,
		NumGC:       m.NumGC,
		Goroutines:  runtime.NumGoroutine(),
		HeapObjects: m.HeapObjects,
	}
}
