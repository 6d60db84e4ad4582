package pillctl

import (
	"context"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"time"

	"github.com/axondata/go-pillctl/internal/codec"
	"github.com/axondata/go-pillctl/internal/unix"
)

// maxReplySize bounds a single CBOR reply from the daemon
const maxReplySize = 1 << 20

// Transport sends one request to an application's endpoint and returns the reply.
// Implementations return an error wrapping ErrServerNotRunning when nothing
// listens on the endpoint.
type Transport interface {
	Call(ctx context.Context, baseDir, application, request string) (Reply, error)
}

// Reply is the daemon's answer to a request: either an encoded success value
// or a remote error.
type Reply struct {
	// Data is the CBOR-encoded success value
	Data codec.RawMessage
	// Remote is set when the daemon raised an error while handling the request
	Remote *RemoteError
}

// OK reports whether the reply carries a success value
func (r Reply) OK() bool {
	return r.Remote == nil
}

// Decode unmarshals the success value into v. An absent value leaves v unchanged.
func (r Reply) Decode(v any) error {
	if r.Remote != nil {
		return r.Remote
	}
	if len(r.Data) == 0 {
		return nil
	}
	return codec.Unmarshal(r.Data, v)
}

// NewReply encodes v as a successful reply
func NewReply(v any) (Reply, error) {
	data, err := codec.Marshal(v)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Data: data}, nil
}

// wireRequest is the CBOR request envelope written to the endpoint
type wireRequest struct {
	Command string `cbor:"command"`
}

// wireReply is the CBOR reply envelope read from the endpoint
type wireReply struct {
	OK    bool             `cbor:"ok"`
	Data  codec.RawMessage `cbor:"data,omitempty"`
	Error string           `cbor:"error,omitempty"`
	Trace []string         `cbor:"trace,omitempty"`
}

// SocketTransport talks to the daemon over the application's unix socket,
// one request per connection.
type SocketTransport struct {
	// DialTimeout is the timeout for connecting to the endpoint
	DialTimeout time.Duration

	// ReadTimeout is the timeout for receiving the reply after the request is written
	ReadTimeout time.Duration
}

// TransportOption configures a SocketTransport
type TransportOption func(*SocketTransport)

// WithDialTimeout sets the timeout for endpoint connections
func WithDialTimeout(d time.Duration) TransportOption {
	return func(t *SocketTransport) {
		t.DialTimeout = d
	}
}

// WithReadTimeout sets the timeout for reading replies
func WithReadTimeout(d time.Duration) TransportOption {
	return func(t *SocketTransport) {
		t.ReadTimeout = d
	}
}

// NewSocketTransport creates a SocketTransport with default timeouts
func NewSocketTransport(opts ...TransportOption) *SocketTransport {
	t := &SocketTransport{
		DialTimeout: DefaultDialTimeout,
		ReadTimeout: DefaultReadTimeout,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Call connects to {baseDir}/socks/{application}.sock, writes the request and
// decodes the reply. A refused connection or missing socket returns an error
// wrapping ErrServerNotRunning; no retry is attempted.
func (t *SocketTransport) Call(ctx context.Context, baseDir, application, request string) (Reply, error) {
	sockPath := filepath.Join(baseDir, SocksDir, application+SockExt)

	dialer := net.Dialer{Timeout: t.DialTimeout}
	conn, err := dialer.DialContext(ctx, "unix", sockPath)
	if err != nil {
		if unix.IsConnRefused(err) {
			return Reply{}, &OpError{Op: "dial", Path: sockPath, Err: ErrServerNotRunning}
		}
		return Reply{}, &OpError{Op: "dial", Path: sockPath, Err: err}
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if err := codec.NewEncoder(conn).Encode(wireRequest{Command: request}); err != nil {
		return Reply{}, &OpError{Op: "write", Path: sockPath, Err: err}
	}

	if uc, ok := conn.(*net.UnixConn); ok {
		_ = uc.CloseWrite()
	}

	if t.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(t.ReadTimeout))
	}

	var wr wireReply
	if err := codec.NewDecoder(io.LimitReader(conn, maxReplySize)).Decode(&wr); err != nil {
		return Reply{}, &OpError{Op: "read", Path: sockPath, Err: fmt.Errorf("decoding reply to %q: %w", request, err)}
	}

	if !wr.OK {
		return Reply{Remote: &RemoteError{Message: wr.Error, Trace: wr.Trace}}, nil
	}
	return Reply{Data: wr.Data}, nil
}
