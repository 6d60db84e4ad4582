package pillctl

import (
	"context"
	"fmt"
	"strings"
)

// localHandler runs a locally handled command. A non-nil Action is terminal.
type localHandler func(ctx context.Context, application string, args ...string) (*Action, error)

// IsDaemonCommand reports whether command is forwarded to the daemon
func (c *Controller) IsDaemonCommand(command string) bool {
	_, ok := c.daemonCommands[command]
	return ok
}

// HandleCommand routes one operator command. Daemon commands take precedence
// over local ones of the same name; anything else is an *UnknownCommandError.
// A non-nil Action must be executed by the caller in place of the current
// process.
func (c *Controller) HandleCommand(ctx context.Context, application, command string, args ...string) (*Action, error) {
	if c.IsDaemonCommand(command) {
		return nil, c.CommandDelegated(ctx, application, command, args...)
	}

	if lc, ok := ParseLocalCommand(command); ok {
		return c.local[lc](ctx, application, args...)
	}

	return nil, &UnknownCommandError{Command: command}
}

// CommandDelegated forwards command to the daemon and reports the processes it affected
func (c *Controller) CommandDelegated(ctx context.Context, application, command string, args ...string) error {
	reply, err := c.rpc.SendToDaemon(ctx, application, command, args...)
	if err != nil {
		return err
	}

	var affected []string
	if err := reply.Decode(&affected); err != nil {
		return fmt.Errorf("decoding reply to %s: %w", command, err)
	}

	if len(affected) == 0 {
		_, _ = fmt.Fprintln(c.Stdout, "No processes affected")
		return nil
	}

	_, _ = fmt.Fprintf(c.Stdout, "Sent %s to:\n", command)
	for _, process := range affected {
		_, _ = fmt.Fprintf(c.Stdout, "  %s\n", process)
	}
	return nil
}

func (c *Controller) statusCommand(ctx context.Context, application string, args ...string) (*Action, error) {
	reply, err := c.rpc.SendToDaemon(ctx, application, localStatusStr, args...)
	if err != nil {
		return nil, err
	}

	var report any
	if err := reply.Decode(&report); err != nil {
		return nil, fmt.Errorf("decoding status reply: %w", err)
	}
	_, _ = fmt.Fprintln(c.Stdout, report)
	return nil, nil
}

func (c *Controller) quitCommand(ctx context.Context, application string, _ ...string) (*Action, error) {
	pid, ok, err := c.Registry.PidFor(application)
	if err != nil {
		return nil, err
	}

	if !ok || !c.oracle.Alive(pid) {
		_, _ = fmt.Fprintf(c.Stdout, "%s[%d] not running\n", DaemonName, pid)
		return nil, nil
	}

	if err := c.terminator.Terminate(pid); err != nil {
		return nil, &OpError{Op: "quit", Path: c.Registry.PidPath(application), Err: err}
	}
	_, _ = fmt.Fprintf(c.Stdout, "Killing %s[%d]\n", DaemonName, pid)

	if c.QuitWait <= 0 {
		return nil, nil
	}

	waitCtx, cancel := context.WithTimeout(ctx, c.QuitWait)
	defer cancel()

	if err := c.Registry.WaitGone(waitCtx, application); err != nil {
		c.logger.Warn("daemon did not remove its endpoint", "application", application, "pid", pid, "error", err)
		_, _ = fmt.Fprintf(c.Stderr, "%s[%d] still running after %s\n", DaemonName, pid, c.QuitWait)
		return nil, nil
	}
	_, _ = fmt.Fprintf(c.Stdout, "%s[%d] stopped\n", DaemonName, pid)
	return nil, nil
}

func (c *Controller) logCommand(ctx context.Context, application string, args ...string) (*Action, error) {
	reply, err := c.rpc.SendToDaemon(ctx, application, requestLogFile)
	if err != nil {
		return nil, err
	}

	var logFile string
	if err := reply.Decode(&logFile); err != nil {
		return nil, fmt.Errorf("decoding log_file reply: %w", err)
	}
	if strings.TrimSpace(logFile) == "" {
		logFile = c.LogFile
	}

	var query string
	if len(args) > 0 {
		query = args[0]
	}

	action := TailAction(logFile, GrepPattern(application, query))
	_, _ = fmt.Fprintf(c.Stdout, "Tailing log for %s...\n", query)
	c.logger.Debug("handing off to tail", "application", application, "log_file", logFile, "command", action.String())
	return action, nil
}
