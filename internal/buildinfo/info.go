// Package buildinfo carries version metadata stamped at link time.
package buildinfo

// Set via -ldflags at build time; defaults cover plain `go build`.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
