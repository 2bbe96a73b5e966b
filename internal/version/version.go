package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the current version of duncord
	Version = "0.1.0"

	// GitCommit is the git commit hash (set during build)
	GitCommit = "unknown"

	// BuildTime is when the binary was built (set during build)
	BuildTime = "unknown"

	// GitDirty is "true" when the workspace had uncommitted changes (set during build)
	GitDirty = ""
)

// Info contains version information
type Info struct {
	Version     string `json:"version"`
	GitCommit   string `json:"git_commit"`
	ShortCommit string `json:"short_commit"`
	BuildTime   string `json:"build_time"`
	GoVersion   string `json:"go_version"`
	Dirty       bool   `json:"dirty"`
}

// Get returns version information
func Get() Info {
	short := GitCommit
	if len(short) > 7 {
		short = short[:7]
	}
	return Info{
		Version:     Version,
		GitCommit:   GitCommit,
		ShortCommit: short,
		BuildTime:   BuildTime,
		GoVersion:   runtime.Version(),
		Dirty:       GitDirty == "true",
	}
}

// String returns a formatted version string
func (i Info) String() string {
	return fmt.Sprintf("duncord v%s (commit: %s, built: %s, go: %s)",
		i.Version, i.GitCommit, i.BuildTime, i.GoVersion)
}
