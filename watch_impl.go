//go:build linux || darwin

package pillctl

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"vawter.tech/stopper"
)

// Watch monitors the socks directory and emits an event whenever an
// endpoint record is created or removed. The returned cleanup function
// stops the watcher and closes the channel.
func (r *Registry) Watch(ctx context.Context) (<-chan RegistryEvent, WatchCleanupFunc, error) {
	socksDir := r.SocksDir()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, &OpError{Op: "watch", Path: socksDir, Err: err}
	}

	if err := watcher.Add(socksDir); err != nil {
		_ = watcher.Close()
		return nil, nil, &OpError{Op: "watch", Path: socksDir, Err: err}
	}

	ch := make(chan RegistryEvent, 10)

	sctx := stopper.WithContext(ctx)
	sctx.Defer(func() {
		_ = watcher.Close()
		close(ch)
	})

	cleanup := func() error {
		sctx.Stop(100 * time.Millisecond)
		return sctx.Wait()
	}

	send := func(ev RegistryEvent) bool {
		select {
		case ch <- ev:
			return true
		case <-sctx.Stopping():
			return false
		}
	}

	sctx.Go(func(sctx *stopper.Context) error {
		for !sctx.IsStopping() {
			select {
			case <-sctx.Stopping():
				return nil

			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}

				base := filepath.Base(event.Name)
				if !strings.HasSuffix(base, SockExt) {
					continue
				}
				ev := RegistryEvent{Application: strings.TrimSuffix(base, SockExt)}

				switch {
				case event.Has(fsnotify.Create):
					ev.Present = true
				case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
					ev.Present = false
				default:
					continue
				}

				if !send(ev) {
					return nil
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				if err != nil && !send(RegistryEvent{Err: err}) {
					return nil
				}
			}
		}
		return nil
	})

	return ch, cleanup, nil
}

// WaitGone blocks until the endpoint record of name no longer exists or ctx
// is done.
func (r *Registry) WaitGone(ctx context.Context, name string) error {
	events, cleanup, err := r.Watch(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = cleanup() }()

	// Checked after the watch is in place so a removal in between is not missed.
	if !r.endpointExists(name) {
		return nil
	}

	for {
		select {
		case event, ok := <-events:
			if !ok {
				if !r.endpointExists(name) {
					return nil
				}
				return ctx.Err()
			}
			if event.Err != nil {
				return &OpError{Op: "watch", Path: r.SockPath(name), Err: event.Err}
			}
			if event.Application == name && !event.Present {
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *Registry) endpointExists(name string) bool {
	_, err := os.Lstat(r.SockPath(name))
	return !errors.Is(err, fs.ErrNotExist)
}
