// Package version provides information about the build version of the bot.
package version

// BuildInfo holds version information about the bot build.
type BuildInfo struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Info returns the build information. The version, commit, and date variables
// are intended to be set at build time using -ldflags.
func Info() BuildInfo {
	// Set via -ldflags "-X 'triagebot/internal/core/version.version=v0.1.0'
	// -X 'triagebot/internal/core/version.commit=abcd' -X 'triagebot/internal/core/version.date=2026-10-01'"
	return BuildInfo{
		Service: "triagebot",
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// String renders a one-line version banner
func (b BuildInfo) String() string {
	return b.Service + " " + b.Version + " (" + b.Commit + ", " + b.Date + ")"
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)
