// Command pillctl sends operator commands to pilld daemons.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/axondata/go-pillctl"
)

// CLI is the command line of pillctl
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" type:"path"`
	BaseDir string           `name:"base-dir" help:"Directory holding the pids and socks records" env:"PILLCTL_BASE_DIR"`
	LogFile string           `name:"log-file" help:"Log file to tail when the daemon reports none" env:"PILLCTL_LOG_FILE"`
	Wait    time.Duration    `help:"How long quit waits for the daemon to exit"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Args []string `arg:"" optional:"" passthrough:"" help:"[application] command [arguments...]"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("pillctl"),
		kong.Description("Control the applications supervised by pilld."),
		kong.Vars{"version": pillctl.Version},
		kong.UsageOnError(),
	)
	os.Exit(run(&cli, os.Stdout, os.Stderr))
}

func run(cli *CLI, stdout, stderr io.Writer) int {
	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := pillctl.LoadConfig(cli.Config)
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		return pillctl.ExitFailure
	}
	if cli.BaseDir != "" {
		cfg.BaseDir = cli.BaseDir
	}
	if cli.LogFile != "" {
		cfg.LogFile = cli.LogFile
	}
	if cli.Wait > 0 {
		cfg.QuitWait = cli.Wait
	}

	opts := append(cfg.Options(),
		pillctl.WithLogger(logger),
		pillctl.WithOutput(stdout, stderr),
	)
	ctl, err := pillctl.NewController(cfg.BaseDir, opts...)
	if err != nil {
		logger.Error("Failed to prepare base directory", "base_dir", cfg.BaseDir, "error", err)
		return pillctl.ExitFailure
	}

	app, rest, err := ctl.ResolveApplication(cli.Args)
	if err != nil {
		return pillctl.WriteError(stderr, err)
	}
	if len(rest) == 0 {
		_, _ = fmt.Fprintf(stderr, "pillctl: missing command for application %s\n", app)
		return pillctl.ExitFailure
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	action, err := ctl.HandleCommand(ctx, app, rest[0], rest[1:]...)
	if err != nil {
		return pillctl.WriteError(stderr, err)
	}
	if action != nil {
		return runAction(action, stderr)
	}
	return pillctl.ExitOK
}
