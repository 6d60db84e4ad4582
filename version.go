package pillctl

// Version is the protocol and build version of the client. Daemons must
// report the same value. Release builds set it with
// -ldflags "-X github.com/axondata/go-pillctl.Version=v1.2.3".
var Version = "1.0.0"

// VersionInfo contains detailed version information
type VersionInfo struct {
	// Version is the semantic version
	Version string
	// Protocol is the wire protocol spoken with the daemon
	Protocol string
}

// GetVersion returns the current version information
func GetVersion() VersionInfo {
	return VersionInfo{
		Version:  Version,
		Protocol: "pilld/cbor",
	}
}
