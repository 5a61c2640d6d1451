package version

import (
	"strings"
	"testing"
)

func saveAndRestore() func() {
	origVersion, origCommit, origBuildTime := Version, GitCommit, BuildTime
	return func() {
		Version = origVersion
		GitCommit = origCommit
		BuildTime = origBuildTime
	}
}

func TestGetLdflagsWin(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.0.0"
	GitCommit = "abc1234"
	BuildTime = "2026-01-15T10:30:00Z"

	info := Get()
	if info.Version != "1.0.0" {
		t.Errorf("expected '1.0.0', got %q", info.Version)
	}
	if info.GitCommit != "abc1234" {
		t.Errorf("expected 'abc1234', got %q", info.GitCommit)
	}
	if info.BuildTime != "2026-01-15T10:30:00Z" {
		t.Errorf("unexpected build time %q", info.BuildTime)
	}
}

func TestShort(t *testing.T) {
	defer saveAndRestore()()
	Version = "1.0.0"
	GitCommit = "abc1234"

	got := Short()
	if !strings.HasPrefix(got, "1.0.0-abc1234") {
		t.Errorf("expected prefix '1.0.0-abc1234', got %q", got)
	}
}

func TestGetGoVersion(t *testing.T) {
	if info := Get(); info.GoVersion != "" && !strings.HasPrefix(info.GoVersion, "go") {
		t.Errorf("unexpected go version %q", info.GoVersion)
	}
}
