package mwalimu

// Name is the service name used in logs and the status endpoint.
const Name = "mwalimu"

// Build-time variables (overridden with ldflags).
var (
	// Version is the release version.
	Version = "0.1.0-dev"
	// GitCommit is the git commit hash the binary was built from.
	GitCommit = "unknown"
	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)
