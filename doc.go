// Package pillctl is the control-plane client for the pilld process
// supervisor. It finds the applications that have a live daemon under a base
// directory, routes operator commands to the right daemon socket and keeps
// the pid and socket records consistent with the processes that actually run.
//
// A base directory holds one pid record and one endpoint record per
// application:
//
//	{base}/pids/{name}.pid    daemon process id, as text
//	{base}/socks/{name}.sock  unix socket the daemon listens on
//
// Both are written by the daemon. The client only reads them and removes
// them once the daemon is gone.
//
//	ctl, err := pillctl.NewController("/var/run/pill")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Forwarded to the daemon, which replies with the affected processes
//	_, err = ctl.HandleCommand(ctx, "web", "restart", "worker")
//
// # Routing
//
// A command is forwarded to the daemon when it is part of the daemon
// vocabulary (see DefaultDaemonCommands and WithDaemonCommands). Otherwise
// status, quit and log are handled by the client, and anything else is an
// *UnknownCommandError. The daemon vocabulary always wins a name collision.
//
// # Requests
//
// Every request is preceded by a version handshake: the daemon must report
// exactly the client's Version. The request itself is the command and its
// arguments joined with ":". Arguments are not escaped, so an argument that
// contains ":" cannot be told apart from two arguments.
//
// Errors map to process exit codes with ExitCode, and WriteError renders
// them for an operator, including the daemon-side trace of a *RemoteError.
//
// # Log tailing
//
// The log command does not return output. HandleCommand returns an *Action
// describing a tail pipeline, and the caller replaces its process with it.
package pillctl
