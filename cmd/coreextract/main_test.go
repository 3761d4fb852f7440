package main

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/joncooperworks/coreextract/scan"
)

func TestRun_NoArgument(t *testing.T) {
	if err := newCommand().Run(context.Background(), []string{"coreextract"}); err != nil {
		t.Errorf("Run() with no argument error = %v, want nil", err)
	}
}

func TestRun_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "core_libretro.so")
	err := newCommand().Run(context.Background(), []string{"coreextract", "--log-level", "error", path})
	if !errors.Is(err, scan.ErrDirectoryOpen) {
		t.Errorf("Run() error = %v, want ErrDirectoryOpen", err)
	}
}

func TestRun_InvalidLogLevel(t *testing.T) {
	err := newCommand().Run(context.Background(), []string{"coreextract", "--log-level", "loud", t.TempDir() + "/x.so"})
	if err == nil {
		t.Error("Run() with invalid log level error = nil, want error")
	}
}
