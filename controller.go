package pillctl

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// Controller routes operator commands to the daemons under a base directory.
// Construction prepares the directory layout and removes stale records, so a
// Controller is ready to handle commands as soon as NewController returns.
type Controller struct {
	// Registry locates the pid and endpoint records
	Registry *Registry

	// LogFile is tailed when the daemon does not report a log file
	LogFile string

	// Version is the version the daemon must report before any request
	Version string

	// QuitWait is how long quit waits for the endpoint record to disappear.
	// Zero returns right after the signal is sent.
	QuitWait time.Duration

	// Stdout receives command output
	Stdout io.Writer

	// Stderr receives warnings meant for the operator
	Stderr io.Writer

	transport      Transport
	oracle         LivenessOracle
	terminator     Terminator
	logger         *slog.Logger
	daemonCommands map[string]struct{}
	local          map[LocalCommand]localHandler

	rpc *RPCClient
}

// Option configures a Controller
type Option func(*Controller)

// WithLogFile sets the log file used when the daemon reports none
func WithLogFile(path string) Option {
	return func(c *Controller) {
		c.LogFile = path
	}
}

// WithVersion sets the version the daemon must report
func WithVersion(v string) Option {
	return func(c *Controller) {
		c.Version = v
	}
}

// WithQuitWait makes quit wait up to d for the daemon's endpoint to disappear
func WithQuitWait(d time.Duration) Option {
	return func(c *Controller) {
		c.QuitWait = d
	}
}

// WithTransport sets the transport used to reach daemons
func WithTransport(t Transport) Option {
	return func(c *Controller) {
		c.transport = t
	}
}

// WithLivenessOracle sets the oracle consulted during cleanup and quit
func WithLivenessOracle(o LivenessOracle) Option {
	return func(c *Controller) {
		c.oracle = o
	}
}

// WithTerminator sets how quit signals the daemon
func WithTerminator(t Terminator) Option {
	return func(c *Controller) {
		c.terminator = t
	}
}

// WithLogger sets the structured logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithOutput sets the writers for command output and operator warnings
func WithOutput(stdout, stderr io.Writer) Option {
	return func(c *Controller) {
		c.Stdout = stdout
		c.Stderr = stderr
	}
}

// WithDaemonCommands replaces the vocabulary of commands forwarded to the daemon
func WithDaemonCommands(commands ...string) Option {
	return func(c *Controller) {
		c.daemonCommands = commandSet(commands)
	}
}

// NewController creates a Controller for baseDir. It creates the pids and
// socks directories if needed, then removes the records of every application
// whose daemon is no longer running.
func NewController(baseDir string, opts ...Option) (*Controller, error) {
	registry, err := NewRegistry(baseDir)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		Registry:       registry,
		LogFile:        DefaultLogFile,
		Version:        Version,
		Stdout:         os.Stdout,
		Stderr:         os.Stderr,
		oracle:         ProcessTable{},
		terminator:     ProcessTable{},
		daemonCommands: commandSet(DefaultDaemonCommands),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.transport == nil {
		c.transport = NewSocketTransport()
	}

	c.rpc = NewRPCClient(c.transport, registry.BaseDir, c.Version, c.logger)
	c.local = map[LocalCommand]localHandler{
		LocalStatus: c.statusCommand,
		LocalQuit:   c.quitCommand,
		LocalLog:    c.logCommand,
	}

	if err := registry.Setup(); err != nil {
		return nil, err
	}

	if err := c.Cleanup(); err != nil {
		c.logger.Warn("stale record cleanup incomplete", "base_dir", registry.BaseDir, "error", err)
	}

	return c, nil
}

// RPC returns the client used for daemon requests
func (c *Controller) RPC() *RPCClient {
	return c.rpc
}

// Applications returns the applications with a live endpoint record
func (c *Controller) Applications() ([]string, error) {
	return c.Registry.Applications()
}

// Cleanup removes the pid and endpoint records of every application whose
// pid record is missing or whose process is not alive. Records of live
// applications are never touched. Removal is best effort: a daemon may
// create or remove records concurrently, and every failure is collected
// without stopping the pass.
func (c *Controller) Cleanup() error {
	apps, err := c.Registry.Applications()
	if err != nil {
		return err
	}

	merr := &MultiError{}
	for _, app := range apps {
		pid, ok, err := c.Registry.PidFor(app)
		if err != nil {
			// Unreadable pid record; leave both records in place.
			merr.Add(err)
			continue
		}
		if ok && c.oracle.Alive(pid) {
			continue
		}

		c.logger.Debug("removing stale records", "application", app, "pid", pid, "pid_record", ok)
		merr.Add(c.Registry.removeRecords(app))
	}
	return merr.Err()
}

// ResolveApplication splits operator arguments into an application and the
// remaining command line. When the first argument is not a running
// application and exactly one application is running, that one is used.
func (c *Controller) ResolveApplication(args []string) (string, []string, error) {
	apps, err := c.Registry.Applications()
	if err != nil {
		return "", nil, err
	}

	if len(args) > 0 {
		for _, app := range apps {
			if app == args[0] {
				return app, args[1:], nil
			}
		}
	}

	switch len(apps) {
	case 0:
		return "", nil, fmt.Errorf("%w: no applications are running under %s", ErrNoApplication, c.Registry.BaseDir)
	case 1:
		return apps[0], args, nil
	default:
		return "", nil, fmt.Errorf("%w: you must specify an application, running: %v", ErrNoApplication, apps)
	}
}

func commandSet(commands []string) map[string]struct{} {
	set := make(map[string]struct{}, len(commands))
	for _, cmd := range commands {
		set[cmd] = struct{}{}
	}
	return set
}
