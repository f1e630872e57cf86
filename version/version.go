package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// Set at build time via -ldflags; the VCS stamp embedded by the Go
// toolchain fills whatever is left empty.
var (
	Version   = "dev"
	GitCommit = ""
	GitBranch = ""
	BuildTime = ""
	GoVersion = ""
)

// Info is the resolved build identity of the running binary.
type Info struct {
	Version   string    `json:"version"`
	GitCommit string    `json:"git_commit"`
	GitBranch string    `json:"git_branch"`
	BuildTime string    `json:"build_time"`
	GoVersion string    `json:"go_version"`
	BuildDate time.Time `json:"build_date"`
	IsRelease bool      `json:"is_release"`
	IsDirty   bool      `json:"is_dirty"`
}

// GetVersionInfo resolves the build identity: ldflags values first,
// then the toolchain's embedded VCS settings for anything missing.
func GetVersionInfo() *Info {
	info := &Info{
		Version:   Version,
		GitCommit: GitCommit,
		GitBranch: GitBranch,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		IsRelease: Version != "dev" && !strings.Contains(Version, "dirty"),
	}

	if BuildTime != "" {
		if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
			info.BuildDate = t
		}
	}

	info.applyBuildInfo()

	if info.BuildDate.IsZero() {
		info.BuildDate = time.Now().UTC()
		info.BuildTime = info.BuildDate.Format(time.RFC3339)
	}
	return info
}

// applyBuildInfo fills gaps from the module build info compiled into
// the binary. Explicit ldflags values always win.
func (info *Info) applyBuildInfo() {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if info.GoVersion == "" {
		info.GoVersion = buildInfo.GoVersion
	}
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			if GitCommit == "" {
				info.GitCommit = shortCommit(setting.Value)
			}
		case "vcs.modified":
			info.IsDirty = setting.Value == "true"
		case "vcs.time":
			if BuildTime == "" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					info.BuildDate = t
					info.BuildTime = setting.Value
				}
			}
		}
	}
}

func shortCommit(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// GetShortVersion returns "version-commit", with a -dirty suffix when
// the tree had local changes.
func GetShortVersion() string {
	info := GetVersionInfo()
	switch {
	case info.GitCommit == "":
		return info.Version
	case info.IsDirty:
		return fmt.Sprintf("%s-%s-dirty", info.Version, info.GitCommit)
	default:
		return fmt.Sprintf("%s-%s", info.Version, info.GitCommit)
	}
}

// GetFullVersion returns the long form including branch and build date.
// Mainline branches are omitted, they carry no information.
func GetFullVersion() string {
	info := GetVersionInfo()
	parts := []string{info.Version}
	if info.GitCommit != "" {
		parts = append(parts, info.GitCommit)
	}
	if info.GitBranch != "" && info.GitBranch != "main" && info.GitBranch != "master" {
		parts = append(parts, info.GitBranch)
	}
	if info.IsDirty {
		parts = append(parts, "dirty")
	}
	version := strings.Join(parts, "-")
	if !info.BuildDate.IsZero() {
		version += fmt.Sprintf(" (built %s)", info.BuildDate.Format("2006-01-02T15:04:05Z"))
	}
	return version
}
