// Package version reports build-time version information, injected via
// -ldflags at release time and defaulting to "dev" for local builds.
package version

import (
	"fmt"
	"runtime"
	"time"
)

const unknownStr = "unknown"

// These are overridden at build time via -ldflags "-X ...".
var (
	Version   = "dev"
	Commit    = unknownStr
	BuildDate = unknownStr
)

// Info is the resolved, human-readable snapshot returned by GetInfo.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo resolves the package-level build variables into an Info value.
// A "dev" Version with a known Commit is rewritten to "build-<shortcommit>"
// so `version` subcommand output from a local build is distinguishable from a
// tagged release without requiring the build to set Version explicitly.
func GetInfo() Info {
	v := Version
	if v == "dev" {
		if Commit != unknownStr {
			short := Commit
			if len(short) > 8 {
				short = short[:8]
			}
			v = "build-" + short
		} else {
			v = "build-unknown"
		}
	}

	buildDate := BuildDate
	if t, err := time.Parse(time.RFC3339, BuildDate); err == nil {
		buildDate = t.UTC().Format("2006-01-02 15:04:05 UTC")
	}

	return Info{
		Version:   v,
		Commit:    Commit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String renders a one-line human-readable summary, used by the CLI's
// version subcommand.
func (i Info) String() string {
	return fmt.Sprintf("couchdb-idp-updater %s (commit %s, built %s, %s, %s)",
		i.Version, i.Commit, i.BuildDate, i.GoVersion, i.Platform)
}
