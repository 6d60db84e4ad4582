package pillctl

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Registry maps application names to their pid and endpoint records under a
// base directory. Records are written by the daemon; the Registry only reads
// and removes them.
type Registry struct {
	// BaseDir is the canonical path to the base directory
	BaseDir string
}

// NewRegistry creates a Registry rooted at baseDir
func NewRegistry(baseDir string) (*Registry, error) {
	absPath, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolving base dir: %w", err)
	}
	return &Registry{BaseDir: absPath}, nil
}

// PidsDir returns the directory holding pid records
func (r *Registry) PidsDir() string {
	return filepath.Join(r.BaseDir, PidsDir)
}

// SocksDir returns the directory holding endpoint records
func (r *Registry) SocksDir() string {
	return filepath.Join(r.BaseDir, SocksDir)
}

// PidPath returns the pid record path for an application
func (r *Registry) PidPath(name string) string {
	return filepath.Join(r.PidsDir(), name+PidExt)
}

// SockPath returns the endpoint record path for an application
func (r *Registry) SockPath(name string) string {
	return filepath.Join(r.SocksDir(), name+SockExt)
}

// Setup creates the pids and socks directories if they do not exist
func (r *Registry) Setup() error {
	for _, dir := range []string{r.SocksDir(), r.PidsDir()} {
		if err := os.MkdirAll(dir, DirMode); err != nil {
			return &OpError{Op: "setup", Path: dir, Err: err}
		}
	}
	return nil
}

// Applications returns the sorted names of all applications that have an
// endpoint record. A missing socks directory yields an empty result.
func (r *Registry) Applications() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(r.SocksDir(), "*"+SockExt))
	if err != nil {
		return nil, &OpError{Op: "list", Path: r.SocksDir(), Err: err}
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(filepath.Base(m), SockExt))
	}
	sort.Strings(names)
	return names, nil
}

// PidFor reads the pid record of an application. ok is false when the record
// does not exist. Content that is not an integer yields pid 0, which callers
// must treat as not alive.
func (r *Registry) PidFor(name string) (pid int, ok bool, err error) {
	path := r.PidPath(name)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, &OpError{Op: "pid", Path: path, Err: err}
	}

	return parsePid(data), true, nil
}

// parsePid reads the leading decimal integer of data, returning 0 if there is none
func parsePid(data []byte) int {
	s := strings.TrimSpace(string(data))
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	pid, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return pid
}

// removeRecords deletes both records of an application. A missing file is
// not an error, and the endpoint record is removed even if the pid record
// could not be.
func (r *Registry) removeRecords(name string) error {
	merr := &MultiError{}
	for _, path := range []string{r.PidPath(name), r.SockPath(name)} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			merr.Add(&OpError{Op: "cleanup", Path: path, Err: err})
		}
	}
	return merr.Err()
}
