//go:build linux || darwin

// Package unix provides platform-specific process primitives.
package unix

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Supported reports whether the process primitives work on this platform.
const Supported = true

// Alive reports whether a process with the given pid exists.
// A pid the caller may not signal still counts as alive.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

// Terminate sends SIGTERM to pid.
func Terminate(pid int) error {
	if pid <= 0 {
		return unix.ESRCH
	}
	return unix.Kill(pid, unix.SIGTERM)
}

// Exec replaces the current process image. It only returns on failure.
func Exec(path string, argv, env []string) error {
	return unix.Exec(path, argv, env)
}

// IsConnRefused reports whether err means nothing is listening on a socket path.
// A missing socket file is treated the same as a refused connection.
func IsConnRefused(err error) bool {
	return errors.Is(err, unix.ECONNREFUSED) || errors.Is(err, unix.ENOENT)
}
