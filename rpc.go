package pillctl

import (
	"context"
	"log/slog"
)

// RPCClient sends operator requests to the daemon, gating every request on a
// version handshake.
type RPCClient struct {
	// BaseDir is the base directory passed to the transport
	BaseDir string

	// Version is the client version the daemon must report
	Version string

	transport Transport
	logger    *slog.Logger
}

// NewRPCClient creates an RPCClient that reaches daemons under baseDir
// through transport and requires them to report version.
func NewRPCClient(transport Transport, baseDir, version string, logger *slog.Logger) *RPCClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &RPCClient{
		BaseDir:   baseDir,
		Version:   version,
		transport: transport,
		logger:    logger,
	}
}

// VerifyVersion asks the daemon for its version and compares it with the
// client's. It goes to the transport directly so the handshake is not itself
// version-checked.
func (c *RPCClient) VerifyVersion(ctx context.Context, application string) error {
	reply, err := c.transport.Call(ctx, c.BaseDir, application, requestVersion)
	if err != nil {
		return err
	}

	var version string
	if reply.Remote != nil || reply.Decode(&version) != nil {
		c.logger.Debug("unreadable version reply", "application", application)
		return &VersionMismatchError{Client: c.Version}
	}

	if version != c.Version {
		return &VersionMismatchError{Daemon: version, Client: c.Version}
	}
	return nil
}

// SendToDaemon verifies the daemon version, then sends command and args as a
// single request. A remote error is returned as *RemoteError; a successful
// reply is returned unchanged.
func (c *RPCClient) SendToDaemon(ctx context.Context, application, command string, args ...string) (Reply, error) {
	if err := c.VerifyVersion(ctx, application); err != nil {
		return Reply{}, err
	}

	request := Request(command, args...)
	c.logger.Debug("sending request", "application", application, "request", request)

	reply, err := c.transport.Call(ctx, c.BaseDir, application, request)
	if err != nil {
		return Reply{}, err
	}
	if reply.Remote != nil {
		return Reply{}, reply.Remote
	}
	return reply, nil
}
