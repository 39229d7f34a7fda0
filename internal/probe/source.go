package probe

// ProcStat is the subset of a process stat record the prober needs.
type ProcStat struct {
	// Comm is the short command name, without parentheses.
	Comm string
	// State is the single-character scheduler state code.
	State string
	// CPUSeconds is user plus system time consumed by the process.
	CPUSeconds float64
	// StartTime is the process start time in clock ticks since boot.
	StartTime uint64
}

// Source reads raw process and host counters.
type Source interface {
	ProcStat(pid int) (ProcStat, error)
	CmdLine(pid int) ([]string, error)
	// RSSBytes returns the resident set size of pid.
	RSSBytes(pid int) (uint64, error)
	// SystemCPUSeconds returns the time spent by all CPUs in all modes.
	SystemCPUSeconds() (float64, error)
	MemTotalBytes() (uint64, error)
	LogicalCores() (int, error)
}
