package dynamic

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestFindChrome_ExplicitPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("exec bits are not meaningful on windows")
	}

	dir := t.TempDir()
	fake := filepath.Join(dir, "chrome")
	if err := os.WriteFile(fake, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}

	if got := FindChrome(fake); got != fake {
		t.Errorf("FindChrome(%q) = %q", fake, got)
	}
}

func TestIsExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("exec bits are not meaningful on windows")
	}

	dir := t.TempDir()
	plain := filepath.Join(dir, "plain")
	if err := os.WriteFile(plain, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if isExecutable(plain) {
		t.Error("non-executable file reported as executable")
	}
	if isExecutable(dir) {
		t.Error("directory reported as executable")
	}
	if isExecutable(filepath.Join(dir, "missing")) {
		t.Error("missing file reported as executable")
	}
}

func TestNew_DefaultTimeout(t *testing.T) {
	f := New(nil, Options{UserAgent: "Test/1.0"})
	if f.opts.Timeout <= 0 {
		t.Error("expected a default timeout")
	}
	if f.Name() != "BrowserFetcher" {
		t.Errorf("unexpected name %q", f.Name())
	}
}
