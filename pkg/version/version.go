package version

import "fmt"

var (
	// Version is the released version, set with ldflags.
	Version = "idea"

	// GitCommit is the commit the binary was built from, set with ldflags.
	GitCommit = ""
)

// String returns the version and the short commit hash when known.
func String() string {
	if len(GitCommit) >= 7 {
		return fmt.Sprintf("%s (%s)", Version, GitCommit[0:7])
	}
	return Version
}
