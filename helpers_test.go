package pillctl

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/renameio/v2"
)

// fakeTransport answers requests from a table. The version request is
// answered with version unless the table overrides it.
type fakeTransport struct {
	version string
	replies map[string]Reply
	errs    map[string]error
	calls   []string
}

func newFakeTransport(version string) *fakeTransport {
	return &fakeTransport{
		version: version,
		replies: make(map[string]Reply),
		errs:    make(map[string]error),
	}
}

func (f *fakeTransport) Call(_ context.Context, _, _, request string) (Reply, error) {
	f.calls = append(f.calls, request)
	if err, ok := f.errs[request]; ok {
		return Reply{}, err
	}
	if r, ok := f.replies[request]; ok {
		return r, nil
	}
	if request == requestVersion {
		return NewReply(f.version)
	}
	return Reply{Remote: &RemoteError{Message: "unexpected request " + request}}, nil
}

// reply registers a successful reply for request
func (f *fakeTransport) reply(t *testing.T, request string, v any) {
	t.Helper()
	r, err := NewReply(v)
	if err != nil {
		t.Fatal(err)
	}
	f.replies[request] = r
}

// fakeOracle reports the pids listed in alive as running
type fakeOracle struct {
	alive   map[int]bool
	checked []int
}

func (o *fakeOracle) Alive(pid int) bool {
	o.checked = append(o.checked, pid)
	return o.alive[pid]
}

// fakeTerminator records signalled pids and runs onTerminate afterwards
type fakeTerminator struct {
	pids        []int
	err         error
	onTerminate func(pid int)
}

func (f *fakeTerminator) Terminate(pid int) error {
	if f.err != nil {
		return f.err
	}
	f.pids = append(f.pids, pid)
	if f.onTerminate != nil {
		f.onTerminate(pid)
	}
	return nil
}

// testEnv bundles a Controller with its fakes and captured output
type testEnv struct {
	baseDir    string
	transport  *fakeTransport
	oracle     *fakeOracle
	terminator *fakeTerminator
	stdout     *bytes.Buffer
	stderr     *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return &testEnv{
		baseDir:    t.TempDir(),
		transport:  newFakeTransport("1.0.0-test"),
		oracle:     &fakeOracle{alive: make(map[int]bool)},
		terminator: &fakeTerminator{},
		stdout:     &bytes.Buffer{},
		stderr:     &bytes.Buffer{},
	}
}

func (e *testEnv) controller(t *testing.T, opts ...Option) *Controller {
	t.Helper()
	base := []Option{
		WithVersion(e.transport.version),
		WithTransport(e.transport),
		WithLivenessOracle(e.oracle),
		WithTerminator(e.terminator),
		WithOutput(e.stdout, e.stderr),
		WithLogger(discardLogger()),
	}
	c, err := NewController(e.baseDir, append(base, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeRecords creates the records of an application the way a daemon
// would. An empty pid skips the pid record.
func writeRecords(t *testing.T, baseDir, name, pid string) {
	t.Helper()
	for _, dir := range []string{PidsDir, SocksDir} {
		if err := os.MkdirAll(filepath.Join(baseDir, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if pid != "" {
		if err := renameio.WriteFile(filepath.Join(baseDir, PidsDir, name+PidExt), []byte(pid), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := renameio.WriteFile(filepath.Join(baseDir, SocksDir, name+SockExt), nil, 0o644); err != nil {
		t.Fatal(err)
	}
}

func fileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
