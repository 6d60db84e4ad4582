package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"

	"github.com/axondata/go-pillctl"
	"github.com/axondata/go-pillctl/internal/unix"
)

// runAction replaces the process with action. Where exec is unavailable the
// action runs as a child that receives our interrupts, and its exit code
// becomes ours.
func runAction(action *pillctl.Action, stderr io.Writer) int {
	if unix.Supported {
		err := unix.Exec(action.Path, action.Argv, os.Environ())
		_, _ = fmt.Fprintf(stderr, "pillctl: exec %s: %v\n", action.Path, err)
		return pillctl.ExitFailure
	}

	cmd := exec.Command(action.Path, action.Argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		_, _ = fmt.Fprintf(stderr, "pillctl: start %s: %v\n", action.Path, err)
		return pillctl.ExitFailure
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)
	go func() {
		for sig := range sigs {
			_ = cmd.Process.Signal(sig)
		}
	}()

	err := cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "pillctl: %s: %v\n", action.Path, err)
		return pillctl.ExitFailure
	}
	return pillctl.ExitOK
}
