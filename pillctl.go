package pillctl

import (
	"strings"
	"time"
)

// Directory and file constants
const (
	// PidsDir is the subdirectory of the base directory holding pid records
	PidsDir = "pids"

	// SocksDir is the subdirectory of the base directory holding endpoint records
	SocksDir = "socks"

	// PidExt is the file suffix of a pid record
	PidExt = ".pid"

	// SockExt is the file suffix of an endpoint record
	SockExt = ".sock"

	// DaemonName is the process name used when reporting on the daemon
	DaemonName = "pilld"

	// DefaultBaseDir is the base directory used when none is configured
	DefaultBaseDir = "/var/run/pill"

	// DefaultLogFile is the log file tailed when the daemon reports none
	DefaultLogFile = "/var/log/pill.log"

	// DefaultDialTimeout is the default timeout for connecting to an endpoint
	DefaultDialTimeout = 5 * time.Second

	// DefaultReadTimeout is the default timeout for reading a daemon reply
	DefaultReadTimeout = 30 * time.Second

	// DefaultTailLines is the number of log lines shown before following
	DefaultTailLines = 100

	// RequestSeparator joins the command and its arguments on the wire.
	// Arguments must not contain it; no escaping is applied.
	RequestSeparator = ":"
)

// File modes
const (
	// DirMode is the default mode for created directories
	DirMode = 0o755
)

// Process exit codes
const (
	// ExitOK is returned for successful commands
	ExitOK = 0

	// ExitFailure is returned for usage, configuration and local errors
	ExitFailure = 1

	// ExitUnknownCommand is returned when a command is neither delegated nor local
	ExitUnknownCommand = 1

	// ExitAbort is returned when the invocation is aborted (server not
	// running, version mismatch)
	ExitAbort = 2

	// ExitRemoteError is returned when the daemon answered with an error
	ExitRemoteError = 8
)

// Daemon requests that are not operator commands
const (
	requestVersion = "version"
	requestLogFile = "log_file"
)

// DefaultDaemonCommands is the vocabulary of commands the daemon executes on
// behalf of the operator. Names listed here are always forwarded, even when a
// local handler of the same name exists.
var DefaultDaemonCommands = []string{"start", "stop", "restart", "unmonitor"}

// LocalCommand represents a command handled by the client itself
type LocalCommand int

const (
	// LocalUnknown represents a name that is not a local command
	LocalUnknown LocalCommand = iota
	// LocalStatus prints the daemon's status report
	LocalStatus
	// LocalQuit terminates the daemon with SIGTERM
	LocalQuit
	// LocalLog tails the daemon's log file
	LocalLog
)

// LocalCommand string constants
const (
	localUnknownStr = "unknown"
	localStatusStr  = "status"
	localQuitStr    = "quit"
	localLogStr     = "log"
)

// String returns the string representation of a LocalCommand
func (lc LocalCommand) String() string {
	switch lc {
	case LocalStatus:
		return localStatusStr
	case LocalQuit:
		return localQuitStr
	case LocalLog:
		return localLogStr
	default:
		return localUnknownStr
	}
}

// ParseLocalCommand maps a command name to a LocalCommand.
// It returns LocalUnknown and false for any other name.
func ParseLocalCommand(name string) (LocalCommand, bool) {
	switch name {
	case localStatusStr:
		return LocalStatus, true
	case localQuitStr:
		return LocalQuit, true
	case localLogStr:
		return LocalLog, true
	default:
		return LocalUnknown, false
	}
}

// Request serializes a command and its arguments into the wire request
func Request(command string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, command)
	parts = append(parts, args...)
	return strings.Join(parts, RequestSeparator)
}
