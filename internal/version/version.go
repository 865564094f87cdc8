// Package version holds build-time version information.
package version

// These are set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "local"
	Date    = "unknown"
)
