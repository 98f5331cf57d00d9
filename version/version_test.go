package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func stub(t *testing.T, version, commit, branch, buildTime string, bi *debug.BuildInfo) {
	t.Helper()
	origVersion, origCommit, origBranch, origBuildTime, origRead :=
		Version, GitCommit, GitBranch, BuildTime, readBuildInfo
	t.Cleanup(func() {
		Version, GitCommit, GitBranch, BuildTime, readBuildInfo =
			origVersion, origCommit, origBranch, origBuildTime, origRead
	})
	Version, GitCommit, GitBranch, BuildTime = version, commit, branch, buildTime
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
}

func TestGet_Defaults(t *testing.T) {
	stub(t, "dev", "", "", "", nil)

	info := Get()
	if info.Program != "voxnote" || info.Version != "dev" {
		t.Errorf("unexpected info %+v", info)
	}
	if info.IsRelease {
		t.Error("dev should not be a release")
	}
	if !info.BuildDate.IsZero() {
		t.Error("expected no build date without a build time")
	}
	if info.GoVersion == "" || info.Platform == "" {
		t.Error("expected go version and platform")
	}
}

func TestGet_LdflagsWin(t *testing.T) {
	stub(t, "1.2.0", "abcdef123456", "main", "2026-01-15T10:30:00Z", &debug.BuildInfo{
		GoVersion: "go1.25.0",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "ffffffffffff"},
			{Key: "vcs.time", Value: "2020-01-01T00:00:00Z"},
		},
	})

	info := Get()
	if info.GitCommit != "abcdef1" {
		t.Errorf("expected truncated ldflags commit, got %q", info.GitCommit)
	}
	if info.BuildDate.Year() != 2026 {
		t.Errorf("expected ldflags build time, got %v", info.BuildDate)
	}
	if !info.IsRelease || info.GoVersion != "go1.25.0" {
		t.Errorf("unexpected info %+v", info)
	}
}

func TestGet_VCSFallback(t *testing.T) {
	stub(t, "1.0.0", "", "", "", &debug.BuildInfo{
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789ab"},
			{Key: "vcs.modified", Value: "true"},
			{Key: "vcs.time", Value: "2025-06-01T08:00:00Z"},
		},
	})

	info := Get()
	if info.GitCommit != "0123456" || !info.IsDirty || info.BuildDate.Year() != 2025 {
		t.Errorf("unexpected info %+v", info)
	}
	if got := info.Short(); got != "1.0.0-0123456-dirty" {
		t.Errorf("Short() = %q", got)
	}
}

func TestShort(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev"}, "dev"},
		{Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234"},
		{Info{Version: "1.0.0", GitCommit: "abc1234", IsDirty: true}, "1.0.0-abc1234-dirty"},
	}
	for _, tc := range tests {
		if got := tc.info.Short(); got != tc.want {
			t.Errorf("Short() = %q, want %q", got, tc.want)
		}
	}
}

func TestString(t *testing.T) {
	stub(t, "1.0.0", "abc1234", "feature/x", "2026-01-15T10:30:00Z", nil)
	s := Get().String()
	for _, want := range []string{"voxnote 1.0.0-abc1234", "feature/x", "built 2026-01-15T10:30:00Z"} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %q in %q", want, s)
		}
	}

	stub(t, "1.0.0", "abc1234", "main", "", nil)
	if strings.Contains(Get().String(), "main") {
		t.Error("main branch should not be printed")
	}
}

func TestUserAgent(t *testing.T) {
	stub(t, "1.0.0", "", "", "", nil)
	if got := UserAgent(); got != "voxnote/1.0.0" {
		t.Errorf("UserAgent() = %q", got)
	}
}
