// Package buildinfo carries the version stamped in with
//
//	-ldflags "-X tickfw/internal/buildinfo.Version=v1.2.0 -X tickfw/internal/buildinfo.Commit=..."
package buildinfo

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short returns the version, or the commit for untagged builds.
func Short() string {
	switch {
	case Version != "" && Version != "dev":
		return Version
	case Commit != "" && Commit != "unknown":
		return Commit
	}
	return "dev"
}

// String returns version, commit and build date on one line.
func String() string {
	return Short() + " (commit " + Commit + ", built " + Date + ")"
}
