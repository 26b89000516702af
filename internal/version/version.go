// Package version reports build information stamped in via -ldflags.
package version

import "fmt"

// Set at build time, e.g. -ldflags "-X github.com/example/gamebook/internal/version.Commit=$(git rev-parse HEAD)".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns the human readable version line.
func String() string {
	return fmt.Sprintf("gamebook %s (commit: %s, built: %s)", Version, ShortCommit(), BuildTime)
}

// ShortCommit returns the first seven characters of the commit hash.
func ShortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}
