//go:build !linux && !darwin

// Package unix provides platform-specific process primitives.
package unix

import (
	"errors"
	"syscall"
)

// Supported reports whether the process primitives work on this platform.
const Supported = false

var errUnsupported = errors.New("process control not supported on this platform")

// Alive always reports false on unsupported platforms.
func Alive(pid int) bool {
	return false
}

// Terminate is not supported on this platform.
func Terminate(pid int) error {
	return errUnsupported
}

// Exec is not supported on this platform.
func Exec(path string, argv, env []string) error {
	return errUnsupported
}

// IsConnRefused reports whether err means nothing is listening on a socket path.
func IsConnRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ENOENT)
}
