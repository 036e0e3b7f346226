// Package version holds takenote build metadata, stamped via ldflags:
//
//	-X github.com/kailas-cloud/takenote/internal/version.Version=v1.2.0
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build for the version command.
func String() string {
	return fmt.Sprintf("takenote %s (%s, %s)", Version, Commit, Date)
}

// UserAgent is sent to remote inference providers.
func UserAgent() string {
	return "takenote/" + Version
}
