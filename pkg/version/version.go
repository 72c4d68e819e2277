// Package version reports how the bardo binary was built.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Product identifies this client to the Confluence server.
const Product = "bardo-confluence"

// Set with -ldflags "-X bardo/pkg/version.Version=...". Empty values are
// filled from the build settings the Go toolchain embeds.
var (
	Version   = "dev"
	GitCommit = ""
	BuildDate = ""
)

type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func Get() BuildInfo {
	b := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		b.fill(info)
	}
	return b
}

// fill copies the module version and VCS stamp into the fields ldflags left
// unset. Only a revision taken from the VCS stamp is marked dirty.
func (b *BuildInfo) fill(info *debug.BuildInfo) {
	if b.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.Version = info.Main.Version
	}

	var fromVCS, dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.GitCommit == "" {
				b.GitCommit = shortRevision(s.Value)
				fromVCS = true
			}
		case "vcs.time":
			if b.BuildDate == "" {
				b.BuildDate = s.Value
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if dirty && fromVCS {
		b.GitCommit += "-dirty"
	}
}

func shortRevision(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

func (b BuildInfo) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "bardo version %s", b.Version)
	if b.GitCommit != "" {
		fmt.Fprintf(&sb, " (%s)", b.GitCommit)
	}
	if b.BuildDate != "" {
		fmt.Fprintf(&sb, " built on %s", b.BuildDate)
	}
	fmt.Fprintf(&sb, " %s %s", b.GoVersion, b.Platform)
	return sb.String()
}
