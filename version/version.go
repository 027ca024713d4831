package version

import "fmt"

// Set at build time with -ldflags "-X bsonkit/version.GitTag=...".
var (
	GitCommit string
	GitTag    string
)

var UserAgent string

// String returns the tag and commit, falling back to "dev" for untagged
// builds.
func String() string {
	tag := GitTag
	if tag == "" {
		tag = "dev"
	}
	if GitCommit == "" {
		return tag
	}
	return fmt.Sprintf("%s+%s", tag, GitCommit)
}

func init() {
	UserAgent = "bsonctl/" + String()
}
