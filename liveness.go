package pillctl

import (
	"github.com/axondata/go-pillctl/internal/unix"
)

// LivenessOracle reports whether a process is currently running
type LivenessOracle interface {
	Alive(pid int) bool
}

// Terminator delivers SIGTERM to a process
type Terminator interface {
	Terminate(pid int) error
}

// ProcessTable is the default LivenessOracle and Terminator, backed by the
// operating system's process table
type ProcessTable struct{}

// Alive reports whether pid names a running process. Pids <= 0 are never alive.
func (ProcessTable) Alive(pid int) bool {
	return unix.Alive(pid)
}

// Terminate sends SIGTERM to pid
func (ProcessTable) Terminate(pid int) error {
	return unix.Terminate(pid)
}
