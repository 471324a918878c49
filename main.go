package main

import (
	"runtime/debug"

	"github.com/easygest/bp/cmd"
)

// Version is overridden at release time via -ldflags "-X main.Version=...".
var Version = "dev"

// buildVersion falls back to Go build metadata when no release version was
// injected: the module version for `go install module@vX.Y.Z` builds, or the
// VCS revision for local builds.
func buildVersion() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Version
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	for _, s := range info.Settings {
		if s.Key != "vcs.revision" || s.Value == "" {
			continue
		}
		rev := s.Value
		if len(rev) > 12 {
			rev = rev[:12]
		}
		return "devel+" + rev
	}
	return Version
}

func main() {
	cmd.SetVersion(buildVersion())
	cmd.Execute()
}
