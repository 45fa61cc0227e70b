package cliutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestScriptWatcherDetectsWriteEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watched.hl")
	if err := os.WriteFile(path, []byte("print(1)"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	sw, err := NewScriptWatcher(path)
	if err != nil {
		t.Fatalf("NewScriptWatcher: %v", err)
	}
	defer sw.Close()

	if err := os.WriteFile(path, []byte("print(2)"), 0o644); err != nil {
		t.Fatalf("rewrite file: %v", err)
	}

	select {
	case <-sw.Events:
	case err := <-sw.Errors:
		t.Fatalf("unexpected watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("expected a change event after rewriting the watched file")
	}
}

func TestScriptWatcherOpenMissingPathErrors(t *testing.T) {
	_, err := NewScriptWatcher(filepath.Join(t.TempDir(), "does-not-exist.hl"))
	if err == nil {
		t.Fatal("watching a nonexistent path should error")
	}
}
