// Package version holds the Opla build version and the semantic version checks
// catalogs are gated with.
package version

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// Build information injected with -ldflags "-X opla/internal/version.Version=...".
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version   string          `json:"version"`
	GitCommit string          `json:"gitCommit"`
	BuildDate string          `json:"buildDate"`
	GoVersion string          `json:"goVersion"`
	Platform  string          `json:"platform"`
	SemVer    *semver.Version `json:"-"`
}

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}

// GetInfo returns the build information, failing when Version is not a semantic version.
func GetInfo() (*Info, error) {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("invalid semantic version '%s': %w", Version, err)
	}

	return &Info{
		Version:   sv.String(),
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		SemVer:    sv,
	}, nil
}

// GetFormattedVersion returns a one line summary such as
// "opla v0.1.0, commit 1a2b3c4, built 2025-01-02".
func GetFormattedVersion() string {
	info, err := GetInfo()
	if err != nil {
		return fmt.Sprintf("opla v%s (invalid version)", Version)
	}

	parts := []string{"opla v" + info.Version}
	if known(info.GitCommit) {
		commit := info.GitCommit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		parts = append(parts, "commit "+commit)
	}
	if known(info.BuildDate) {
		parts = append(parts, "built "+info.BuildDate)
	}
	return strings.Join(parts, ", ")
}

// GetDetailedVersion returns one "Key: value" line per build attribute.
func GetDetailedVersion() string {
	info, err := GetInfo()
	if err != nil {
		return fmt.Sprintf("opla v%s (error: %v)", Version, err)
	}

	buildDate := info.BuildDate
	if built, err := GetBuildTime(); err == nil {
		buildDate = built.UTC().Format(time.RFC3339)
	}
	lines := []string{
		"opla v" + info.Version,
		"Git Commit: " + info.GitCommit,
		"Build Date: " + buildDate,
		fmt.Sprintf("Development Build: %t", IsDevelopment()),
	}
	if pre := info.SemVer.Prerelease(); pre != "" {
		lines = append(lines, "Prerelease: "+pre)
	}
	if meta := info.SemVer.Metadata(); meta != "" {
		lines = append(lines, "Build Metadata: "+meta)
	}
	lines = append(lines, "Go Version: "+info.GoVersion, "Platform: "+info.Platform)
	return strings.Join(lines, "\n")
}

// IsDevelopment reports whether the binary was built without release information.
func IsDevelopment() bool {
	return !known(GitCommit) || !known(BuildDate)
}

// Satisfies reports whether the current version meets constraint, e.g. ">= 0.1.0".
// An empty constraint is always met. Prerelease builds are compared on their
// major.minor.patch so that development binaries can load release catalogs.
func Satisfies(constraint string) (bool, error) {
	if strings.TrimSpace(constraint) == "" {
		return true, nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid version constraint '%s': %w", constraint, err)
	}
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return false, fmt.Errorf("invalid semantic version '%s': %w", Version, err)
	}
	if sv.Prerelease() != "" {
		base, err := sv.SetPrerelease("")
		if err != nil {
			return false, err
		}
		sv = &base
	}
	return c.Check(sv), nil
}

// SetBuildInfo overrides the build information. Tests use it.
func SetBuildInfo(version, gitCommit, buildDate string) {
	Version = version
	GitCommit = gitCommit
	BuildDate = buildDate
}

// GetBuildTime parses BuildDate.
func GetBuildTime() (time.Time, error) {
	if !known(BuildDate) {
		return time.Time{}, fmt.Errorf("build date not available")
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, BuildDate); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse build date '%s'", BuildDate)
}

func known(value string) bool {
	return value != "" && value != "unknown"
}
