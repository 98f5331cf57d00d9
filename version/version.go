package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// Program is the name reported by the CLI and server.
const Program = "voxnote"

var (
	// These variables are set at build time using -ldflags
	Version   = "dev"
	GitCommit = ""
	GitBranch = ""
	BuildTime = ""
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// Info represents version information.
type Info struct {
	Program   string    `json:"program"`
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit,omitempty"`
	GitBranch string    `json:"git_branch,omitempty"`
	BuildTime string    `json:"build_time,omitempty"`
	BuildDate time.Time `json:"-"`
	GoVersion string    `json:"go_version"`
	Platform  string    `json:"platform"`
	IsRelease bool      `json:"is_release"`
	IsDirty   bool      `json:"is_dirty"`
}

// Get returns the version information of the running binary.
func Get() Info {
	info := Info{
		Program:   Program,
		Version:   Version,
		GitCommit: GitCommit,
		GitBranch: GitBranch,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		IsRelease: Version != "dev" && !strings.Contains(Version, "dirty"),
	}

	if buildInfo, ok := readBuildInfo(); ok {
		if buildInfo.GoVersion != "" {
			info.GoVersion = buildInfo.GoVersion
		}
		for _, setting := range buildInfo.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = setting.Value
				}
			case "vcs.modified":
				info.IsDirty = setting.Value == "true"
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = setting.Value
				}
			}
		}
	}

	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	if t, err := time.Parse(time.RFC3339, info.BuildTime); err == nil {
		info.BuildDate = t.UTC()
	}
	return info
}

// Short returns "<version>[-<commit>][-dirty]".
func (i Info) Short() string {
	if i.GitCommit == "" {
		return i.Version
	}
	if i.IsDirty {
		return fmt.Sprintf("%s-%s-dirty", i.Version, i.GitCommit)
	}
	return fmt.Sprintf("%s-%s", i.Version, i.GitCommit)
}

// String returns the line printed by "voxnote version".
func (i Info) String() string {
	parts := []string{i.Short()}
	if i.GitBranch != "" && i.GitBranch != "main" && i.GitBranch != "master" {
		parts = append(parts, i.GitBranch)
	}
	s := i.Program + " " + strings.Join(parts, " ")
	if !i.BuildDate.IsZero() {
		s += fmt.Sprintf(" (built %s)", i.BuildDate.Format("2006-01-02T15:04:05Z"))
	}
	return s + " " + i.GoVersion + " " + i.Platform
}

// UserAgent returns the User-Agent sent to providers.
func UserAgent() string {
	return Program + "/" + Get().Short()
}
