// Package version reports the build of the card reader tools.
package version

import "fmt"

// Set with -ldflags "-X pokervision/internal/version.Version=..."
var (
	Version   = "0.3.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String returns "version (commit, built time)".
func String() string {
	return fmt.Sprintf("%s (%s, built %s)", Version, GitCommit, BuildTime)
}
