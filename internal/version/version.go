// Package version holds build metadata set via -ldflags.
package version

var (
	Version = "dev"
	Commit  = "none"
)

func String() string {
	if Commit == "none" || Commit == "" {
		return Version
	}
	return Version + " (" + Commit + ")"
}
