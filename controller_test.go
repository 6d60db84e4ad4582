package pillctl

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewControllerCreatesLayout(t *testing.T) {
	env := newTestEnv(t)
	baseDir := filepath.Join(env.baseDir, "fresh")
	env.baseDir = baseDir

	c := env.controller(t)

	assert.DirExists(t, filepath.Join(baseDir, PidsDir))
	assert.DirExists(t, filepath.Join(baseDir, SocksDir))
	assert.Equal(t, baseDir, c.Registry.BaseDir)
	assert.Empty(t, env.oracle.checked)
}

func TestNewControllerOptions(t *testing.T) {
	env := newTestEnv(t)
	c := env.controller(t,
		WithLogFile("/tmp/pill.log"),
		WithQuitWait(3*time.Second),
		WithDaemonCommands("start", "status"),
	)

	assert.Equal(t, "/tmp/pill.log", c.LogFile)
	assert.Equal(t, 3*time.Second, c.QuitWait)
	assert.Equal(t, "1.0.0-test", c.RPC().Version)
	assert.True(t, c.IsDaemonCommand("status"))
	assert.False(t, c.IsDaemonCommand("restart"))
}

func TestNewControllerDefaults(t *testing.T) {
	c, err := NewController(t.TempDir(), WithLogger(discardLogger()))
	require.NoError(t, err)

	assert.Equal(t, DefaultLogFile, c.LogFile)
	assert.Equal(t, Version, c.Version)
	assert.Equal(t, Version, c.RPC().Version)
	for _, cmd := range DefaultDaemonCommands {
		assert.True(t, c.IsDaemonCommand(cmd), cmd)
	}
	_, ok := c.transport.(*SocketTransport)
	assert.True(t, ok, "default transport is %T", c.transport)
}

func TestCleanup(t *testing.T) {
	t.Run("empty base dir", func(t *testing.T) {
		env := newTestEnv(t)
		c := env.controller(t)

		require.NoError(t, c.Cleanup())
		assert.Empty(t, env.oracle.checked)
		assert.Empty(t, env.transport.calls)
	})

	t.Run("dead pid removes both records", func(t *testing.T) {
		env := newTestEnv(t)
		writeRecords(t, env.baseDir, "app", "4242")

		c := env.controller(t)

		assert.Equal(t, []int{4242}, env.oracle.checked)
		assert.False(t, fileExists(c.Registry.PidPath("app")))
		assert.False(t, fileExists(c.Registry.SockPath("app")))
	})

	t.Run("live pid keeps both records", func(t *testing.T) {
		env := newTestEnv(t)
		env.oracle.alive[4242] = true
		writeRecords(t, env.baseDir, "app", "4242")

		c := env.controller(t)

		assert.True(t, fileExists(c.Registry.PidPath("app")))
		assert.True(t, fileExists(c.Registry.SockPath("app")))
	})

	t.Run("missing pid record removes endpoint", func(t *testing.T) {
		env := newTestEnv(t)
		writeRecords(t, env.baseDir, "app", "")

		c := env.controller(t)

		assert.Empty(t, env.oracle.checked)
		assert.False(t, fileExists(c.Registry.SockPath("app")))
	})

	t.Run("unparseable pid is not alive", func(t *testing.T) {
		env := newTestEnv(t)
		env.oracle.alive[0] = true
		writeRecords(t, env.baseDir, "app", "garbage")

		c := env.controller(t)

		// The oracle is asked about pid 0; the fake says alive, so the
		// records stay. With the real oracle pid 0 is never alive.
		assert.Equal(t, []int{0}, env.oracle.checked)
		assert.True(t, fileExists(c.Registry.SockPath("app")))
		assert.False(t, ProcessTable{}.Alive(0))
	})

	t.Run("mixed applications", func(t *testing.T) {
		env := newTestEnv(t)
		env.oracle.alive[100] = true
		writeRecords(t, env.baseDir, "live", "100")
		writeRecords(t, env.baseDir, "dead", "200")
		writeRecords(t, env.baseDir, "orphan", "")

		c := env.controller(t)

		apps, err := c.Applications()
		require.NoError(t, err)
		assert.Equal(t, []string{"live"}, apps)
		assert.True(t, fileExists(c.Registry.PidPath("live")))
		assert.False(t, fileExists(c.Registry.PidPath("dead")))
	})

	t.Run("pid record without endpoint is not scanned", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, os.MkdirAll(filepath.Join(env.baseDir, PidsDir), 0o755))
		pidPath := filepath.Join(env.baseDir, PidsDir, "lonely.pid")
		require.NoError(t, os.WriteFile(pidPath, []byte("9"), 0o644))

		env.controller(t)

		assert.True(t, fileExists(pidPath))
		assert.Empty(t, env.oracle.checked)
	})

	t.Run("idempotent", func(t *testing.T) {
		env := newTestEnv(t)
		writeRecords(t, env.baseDir, "app", "4242")

		c := env.controller(t)
		require.NoError(t, c.Cleanup())
		require.NoError(t, c.Cleanup())
	})
}

func TestResolveApplication(t *testing.T) {
	t.Run("explicit application", func(t *testing.T) {
		env := newTestEnv(t)
		env.oracle.alive[1] = true
		env.oracle.alive[2] = true
		writeRecords(t, env.baseDir, "web", "1")
		writeRecords(t, env.baseDir, "worker", "2")
		c := env.controller(t)

		app, rest, err := c.ResolveApplication([]string{"worker", "restart", "fast"})
		require.NoError(t, err)
		assert.Equal(t, "worker", app)
		assert.Equal(t, []string{"restart", "fast"}, rest)
	})

	t.Run("single running application is implied", func(t *testing.T) {
		env := newTestEnv(t)
		env.oracle.alive[1] = true
		writeRecords(t, env.baseDir, "web", "1")
		c := env.controller(t)

		app, rest, err := c.ResolveApplication([]string{"status"})
		require.NoError(t, err)
		assert.Equal(t, "web", app)
		assert.Equal(t, []string{"status"}, rest)
	})

	t.Run("ambiguous", func(t *testing.T) {
		env := newTestEnv(t)
		env.oracle.alive[1] = true
		env.oracle.alive[2] = true
		writeRecords(t, env.baseDir, "web", "1")
		writeRecords(t, env.baseDir, "worker", "2")
		c := env.controller(t)

		_, _, err := c.ResolveApplication([]string{"status"})
		require.ErrorIs(t, err, ErrNoApplication)
		assert.Contains(t, err.Error(), "web")
		assert.Contains(t, err.Error(), "worker")
	})

	t.Run("nothing running", func(t *testing.T) {
		env := newTestEnv(t)
		c := env.controller(t)

		_, _, err := c.ResolveApplication([]string{"web", "status"})
		require.ErrorIs(t, err, ErrNoApplication)
		assert.Equal(t, ExitFailure, ExitCode(err))
	})
}
