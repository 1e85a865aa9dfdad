package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestFileCacheContract(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("new file cache: %v", err)
	}
	exerciseCache(t, c)
}

func TestFileCachePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("new file cache: %v", err)
	}
	if err := first.Set(ctx, "member_token", []byte("abc")); err != nil {
		t.Fatalf("set: %v", err)
	}

	second, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("reopen file cache: %v", err)
	}
	got, err := second.Get(ctx, "member_token")
	if err != nil {
		t.Fatalf("get after reopen: %v", err)
	}
	if string(got) != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
}

func TestFileCacheWritesPrivateFilesWithoutLeftovers(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions only")
	}
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("new file cache: %v", err)
	}
	if err := c.Set(context.Background(), "member_token", []byte("abc")); err != nil {
		t.Fatalf("set: %v", err)
	}

	info, err := os.Stat(filepath.Join(dir, "member_token"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600, got %o", perm)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the value file, found %d entries", len(entries))
	}
}

func TestFileCacheRejectsPathKeys(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("new file cache: %v", err)
	}
	ctx := context.Background()
	for _, key := range []string{"../escape", "a/b", `a\b`, ".hidden", ".."} {
		if err := c.Set(ctx, key, []byte("x")); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestNewFileCacheRequiresDirectory(t *testing.T) {
	if _, err := NewFileCache("  "); err == nil {
		t.Fatal("expected error for blank directory")
	}
}
