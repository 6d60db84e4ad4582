//go:build !linux && !darwin

package pillctl

import (
	"context"
	"errors"
)

// Watch is not supported on this platform
func (r *Registry) Watch(ctx context.Context) (<-chan RegistryEvent, WatchCleanupFunc, error) {
	return nil, nil, errors.New("watch not supported on this platform")
}

// WaitGone is not supported on this platform
func (r *Registry) WaitGone(ctx context.Context, name string) error {
	return errors.New("wait not supported on this platform")
}
