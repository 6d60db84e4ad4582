package pillctl

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is read when no config file is given explicitly
const DefaultConfigPath = "/etc/pill/pillctl.yaml"

// Config holds the file-based settings of the client
type Config struct {
	// BaseDir is the directory holding the pids and socks subdirectories
	BaseDir string `yaml:"base_dir"`
	// LogFile is tailed when the daemon does not report a log file
	LogFile string `yaml:"log_file"`
	// DialTimeout bounds connecting to a daemon endpoint
	DialTimeout time.Duration `yaml:"dial_timeout"`
	// ReadTimeout bounds waiting for a daemon reply
	ReadTimeout time.Duration `yaml:"read_timeout"`
	// QuitWait is how long quit waits for the daemon to go away
	QuitWait time.Duration `yaml:"quit_wait"`
	// DaemonCommands is the vocabulary forwarded to the daemon
	DaemonCommands []string `yaml:"daemon_commands"`
}

// DefaultConfig returns the built-in settings
func DefaultConfig() Config {
	return Config{
		BaseDir:        DefaultBaseDir,
		LogFile:        DefaultLogFile,
		DialTimeout:    DefaultDialTimeout,
		ReadTimeout:    DefaultReadTimeout,
		DaemonCommands: append([]string(nil), DefaultDaemonCommands...),
	}
}

// LoadConfig reads a YAML config file over the defaults. An empty path reads
// DefaultConfigPath, which may be absent; an explicit path must exist.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the settings can be used
func (c Config) Validate() error {
	if c.BaseDir == "" {
		return errors.New("base_dir must not be empty")
	}
	if c.DialTimeout < 0 || c.ReadTimeout < 0 || c.QuitWait < 0 {
		return errors.New("timeouts must not be negative")
	}
	if len(c.DaemonCommands) == 0 {
		return errors.New("daemon_commands must not be empty")
	}
	return nil
}

// Options converts the settings into Controller options
func (c Config) Options() []Option {
	return []Option{
		WithLogFile(c.LogFile),
		WithQuitWait(c.QuitWait),
		WithDaemonCommands(c.DaemonCommands...),
		WithTransport(NewSocketTransport(
			WithDialTimeout(c.DialTimeout),
			WithReadTimeout(c.ReadTimeout),
		)),
	}
}
