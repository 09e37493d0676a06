// Package version holds build metadata injected with ldflags.
package version

import "fmt"

// Version is set at build time:
// go build -ldflags "-X git.home.luguber.info/inful/kssbuilder/internal/version.Version=v0.3.0".
var Version = "dev"

// Build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version.
func String() string {
	return fmt.Sprintf("kssbuilder %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
