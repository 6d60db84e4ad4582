package pillctl

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Common errors returned by pillctl operations
var (
	// ErrUnknownCommand indicates the command is neither delegated nor handled locally
	ErrUnknownCommand = errors.New("pillctl: unknown command")

	// ErrServerNotRunning indicates no daemon is listening on the endpoint
	ErrServerNotRunning = errors.New("pillctl: server is not running")

	// ErrVersionMismatch indicates the daemon and the client were built from different versions
	ErrVersionMismatch = errors.New("pillctl: daemon version mismatch")

	// ErrNoApplication indicates the target application could not be determined
	ErrNoApplication = errors.New("pillctl: no application")
)

// OpError represents an error from a pillctl operation
type OpError struct {
	// Op is the operation that failed
	Op string
	// Path is the file path involved in the operation
	Path string
	// Err is the underlying error
	Err error
}

// Error returns a formatted error message
func (e *OpError) Error() string {
	return fmt.Sprintf("pillctl %s %q: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *OpError) Unwrap() error {
	return e.Err
}

// UnknownCommandError reports a command no route accepts
type UnknownCommandError struct {
	Command string
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("Unknown command `%s` (or application `%s` has not been loaded yet)", e.Command, e.Command)
}

// Unwrap lets errors.Is match ErrUnknownCommand
func (e *UnknownCommandError) Unwrap() error {
	return ErrUnknownCommand
}

// VersionMismatchError carries both sides of a failed version handshake.
// Daemon is empty when the daemon's reply could not be read as a version.
type VersionMismatchError struct {
	Daemon string
	Client string
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("pillctl: daemon version %q does not match client version %q", e.Daemon, e.Client)
}

// Message returns the operator-facing explanation of the mismatch
func (e *VersionMismatchError) Message() string {
	const outOfDate = "The running version of your daemon seems to be out of date."
	if e.Daemon == "" {
		return outOfDate
	}
	return fmt.Sprintf("%s\nDaemon Version: %s, CLI Version: %s", outOfDate, e.Daemon, e.Client)
}

// Unwrap lets errors.Is match ErrVersionMismatch
func (e *VersionMismatchError) Unwrap() error {
	return ErrVersionMismatch
}

// RemoteError is an error raised inside the daemon and carried back over the transport
type RemoteError struct {
	// Message is the daemon's description of the failure
	Message string
	// Trace is the daemon-side stack trace, outermost frame first
	Trace []string
}

func (e *RemoteError) Error() string {
	return "remote error: " + e.Message
}

// MultiError aggregates multiple errors from bulk operations
type MultiError struct {
	// Errors contains all accumulated errors
	Errors []error
}

// Error returns a summary of the accumulated errors
func (m *MultiError) Error() string {
	if len(m.Errors) == 0 {
		return "no errors"
	}
	if len(m.Errors) == 1 {
		return m.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors occurred", len(m.Errors))
}

// Add appends an error to the collection if it's not nil
func (m *MultiError) Add(err error) {
	if err != nil {
		m.Errors = append(m.Errors, err)
	}
}

// Err returns nil if no errors occurred, otherwise returns the MultiError itself
func (m *MultiError) Err() error {
	if len(m.Errors) == 0 {
		return nil
	}
	return m
}

// Unwrap exposes the accumulated errors to errors.Is and errors.As
func (m *MultiError) Unwrap() []error {
	return m.Errors
}

// ExitCode maps an error returned by the Controller to a process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var remote *RemoteError
	switch {
	case errors.As(err, &remote):
		return ExitRemoteError
	case errors.Is(err, ErrServerNotRunning), errors.Is(err, ErrVersionMismatch):
		return ExitAbort
	case errors.Is(err, ErrUnknownCommand):
		return ExitUnknownCommand
	default:
		return ExitFailure
	}
}

// WriteError renders err for an operator and returns the matching exit code.
// Remote errors are printed with their daemon-side trace.
func WriteError(w io.Writer, err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		remote   *RemoteError
		mismatch *VersionMismatchError
	)
	switch {
	case errors.As(err, &remote):
		_, _ = fmt.Fprintln(w, "Received error from server:")
		_, _ = fmt.Fprintln(w, remote.Message)
		if len(remote.Trace) > 0 {
			_, _ = fmt.Fprintln(w, strings.Join(remote.Trace, "\n"))
		}
	case errors.Is(err, ErrServerNotRunning):
		_, _ = fmt.Fprintln(w, "Connection Refused: Server is not running")
	case errors.As(err, &mismatch):
		_, _ = fmt.Fprintln(w, mismatch.Message())
	default:
		_, _ = fmt.Fprintln(w, err.Error())
	}

	return ExitCode(err)
}
