package version

import "fmt"

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String returns the one-line build description printed by -version.
func String() string {
	return fmt.Sprintf("aismap %s (commit %s, built %s)", Version, GitSHA, BuildTime)
}
