package utils

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStoreLockLockUnlock(t *testing.T) {
	ctx := context.Background()
	l, err := NewStoreLock(filepath.Join(t.TempDir(), "store.sqlite"))
	if err != nil {
		t.Fatalf("NewStoreLock: %v", err)
	}
	if !strings.HasSuffix(l.Path(), "store.sqlite.lock") {
		t.Fatalf("unexpected lock path %q", l.Path())
	}
	if err := l.Lock(ctx); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if err := l.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	// Lock is reusable after release.
	ran := false
	if err := l.Do(ctx, func() error { ran = true; return nil }); err != nil || !ran {
		t.Fatalf("Do: ran=%v err=%v", ran, err)
	}
}

func TestStoreLockWaitHonoursContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.sqlite")
	holder, _ := NewStoreLock(path)
	waiter, _ := NewStoreLock(path)

	if err := holder.Lock(context.Background()); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer holder.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := waiter.Lock(ctx); err == nil {
		waiter.Unlock()
		t.Fatalf("expected a second holder to give up when the context expires")
	}
}

func TestStorePathDefault(t *testing.T) {
	p, err := StorePath("")
	if err != nil {
		t.Fatalf("StorePath: %v", err)
	}
	if !strings.HasSuffix(p, filepath.Join(".config", "kittrack", "kittrack.sqlite")) {
		t.Fatalf("unexpected default path %q", p)
	}
}

func TestExpandHome(t *testing.T) {
	home := func() (string, error) { return "/home/test", nil }
	tests := map[string]string{
		"~/data/x.sqlite": "/home/test/data/x.sqlite",
		"/abs/x.sqlite":   "/abs/x.sqlite",
		"rel.sqlite":      "rel.sqlite",
	}
	for in, want := range tests {
		got, err := ExpandHome(in, home)
		if err != nil {
			t.Fatalf("ExpandHome(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ExpandHome(%q): want %q, got %q", in, want, got)
		}
	}
}
