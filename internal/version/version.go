// Package version provides build-time version information.
package version

import "fmt"

// Name is the application name shown in window titles and User-Agent headers.
const Name = "Star Map Generator"

// These variables are set at build time using -ldflags
var (
	// Version is the semantic version
	Version = "0.1.0"

	// BuildTime is the UTC time when the binary was built
	BuildTime = "unknown"

	// GitCommit is the git commit hash
	GitCommit = "unknown"
)

// String describes the build, e.g. "Star Map Generator 0.1.0 (abc123, built unknown)".
func String() string {
	return fmt.Sprintf("%s %s (%s, built %s)", Name, Version, GitCommit, BuildTime)
}

// UserAgent identifies HTTP requests made by this build.
func UserAgent() string {
	return "starmap/" + Version
}
