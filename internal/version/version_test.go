package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	origCommit, origBuilt := Commit, BuildTime
	t.Cleanup(func() { Commit, BuildTime = origCommit, origBuilt })

	Commit = "0123456789abcdef"
	BuildTime = "2026-03-02T09:00:00Z"

	got := String()
	if !strings.HasPrefix(got, "docroute dev") {
		t.Errorf("String() = %q, want docroute prefix", got)
	}
	if !strings.Contains(got, "commit: 0123456") || strings.Contains(got, "0123456789") {
		t.Errorf("String() = %q, want short commit", got)
	}
}

func TestShortCommit_Short(t *testing.T) {
	orig := Commit
	t.Cleanup(func() { Commit = orig })

	Commit = "abc"
	if got := ShortCommit(); got != "abc" {
		t.Errorf("ShortCommit() = %q, want %q", got, "abc")
	}
}
