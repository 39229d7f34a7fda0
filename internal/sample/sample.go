package sample

import "time"

// CPUSentinel is the CPU percentage carried by a sample whose measurement
// failed. Successful measurements are always >= 0.
const CPUSentinel = -1.0

// UnknownName is used when neither the command line nor the short name of a
// process could be read.
const UnknownName = "Unknown"

// State is the scheduler state of a process as reported by the kernel.
type State int

const (
	StateUnknown State = iota
	StateRunning
	StateSleeping
	StateUninterruptibleSleep
	StateStopped
	StateTracingStop
	StateZombie
	StateDead
	// StateError marks a sample whose probe could not read the process at all.
	StateError
)

var stateNames = [...]string{
	StateUnknown:              "Unknown",
	StateRunning:              "Running",
	StateSleeping:             "Sleeping",
	StateUninterruptibleSleep: "UninterruptibleSleep",
	StateStopped:              "Stopped",
	StateTracingStop:          "TracingStop",
	StateZombie:               "Zombie",
	StateDead:                 "Dead",
	StateError:                "Error",
}

// String returns the display name of the state.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return stateNames[StateUnknown]
	}
	return stateNames[s]
}

// MarshalText lets JSON encoders emit the display name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText. Unknown names
// decode to StateUnknown.
func (s *State) UnmarshalText(text []byte) error {
	*s = StateUnknown
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			break
		}
	}
	return nil
}

// ParseStateCode maps the single-character state code found in
// /proc/<pid>/stat to a State. Unrecognized codes map to StateUnknown.
func ParseStateCode(code string) State {
	if code == "" {
		return StateUnknown
	}
	switch code[0] {
	case 'R':
		return StateRunning
	case 'S':
		return StateSleeping
	case 'D':
		return StateUninterruptibleSleep
	case 'T':
		return StateStopped
	case 't':
		return StateTracingStop
	case 'Z':
		return StateZombie
	case 'X', 'x':
		return StateDead
	default:
		return StateUnknown
	}
}

// ProcessSample is one measurement of one process.
//
// A sample is either fully populated with Active set, or it carries the
// failure shape built by Inactive: CPUPercent == CPUSentinel, MemPercent == 0.
type ProcessSample struct {
	PID        int       `json:"pid"`
	Name       string    `json:"name"`
	State      State     `json:"state"`
	CPUPercent float64   `json:"cpu_percent"`
	MemPercent float64   `json:"mem_percent"`
	Active     bool      `json:"active"`
	UpdatedAt  time.Time `json:"updated_at"`
	// StartTime is the process start time in clock ticks since boot.
	StartTime uint64 `json:"start_time"`
}

// Inactive returns the failure shape of a sample for pid.
func Inactive(pid int, state State) ProcessSample {
	return ProcessSample{
		PID:        pid,
		Name:       UnknownName,
		State:      state,
		CPUPercent: CPUSentinel,
		UpdatedAt:  time.Now(),
	}
}

// Failed reports whether the sample carries the failure shape.
func (s ProcessSample) Failed() bool {
	return !s.Active || s.CPUPercent < 0
}
