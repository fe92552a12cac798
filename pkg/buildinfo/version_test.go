package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func reset(t *testing.T, version, commit, date string) {
	t.Helper()
	oldV, oldC, oldD := Version, Commit, Date
	Version, Commit, Date = version, commit, date
	t.Cleanup(func() { Version, Commit, Date = oldV, oldC, oldD })
}

func TestFill(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "abc123"},
			{Key: "vcs.time", Value: "2025-01-31T14:25:01Z"},
		},
	}

	t.Run("unset", func(t *testing.T) {
		reset(t, "dev", "none", "unknown")
		fill(bi)
		if Version != "v0.3.1" || Commit != "abc123" || Date != "2025-01-31T14:25:01Z" {
			t.Errorf("got %s %s %s", Version, Commit, Date)
		}
	})

	t.Run("ldflags win", func(t *testing.T) {
		reset(t, "v1.0.0", "deadbeef", "yesterday")
		fill(bi)
		if Version != "v1.0.0" || Commit != "deadbeef" || Date != "yesterday" {
			t.Errorf("got %s %s %s", Version, Commit, Date)
		}
	})

	t.Run("devel", func(t *testing.T) {
		reset(t, "dev", "none", "unknown")
		fill(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
		if Version != "dev" {
			t.Errorf("Version = %q", Version)
		}
	})
}

func TestStrings(t *testing.T) {
	reset(t, "v1.2.3", "abc", "today")

	if got := Template(); got != "{{.Name}} v1.2.3\ncommit: abc\nbuilt: today\n" {
		t.Errorf("Template() = %q", got)
	}
	if !strings.HasPrefix(UserAgent(), "conet/v1.2.3 ") {
		t.Errorf("UserAgent() = %q", UserAgent())
	}
}
