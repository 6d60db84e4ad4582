package pillctl

// RegistryEvent reports an endpoint record appearing or disappearing
type RegistryEvent struct {
	// Application is the name derived from the endpoint record
	Application string
	// Present is true when the record was created, false when it was removed
	Present bool
	// Err is set when the watcher itself failed
	Err error
}

// WatchCleanupFunc stops a watch and releases its resources
type WatchCleanupFunc func() error
