package kv

import (
	"bytes"
	"path/filepath"
	"testing"
)

func openTest(t *testing.T) *SQLiteKV {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "state", "game.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSetGetRemove(t *testing.T) {
	s := openTest(t)

	if _, ok, err := s.Get("snapshot"); err != nil || ok {
		t.Fatalf("fresh store: ok=%v err=%v", ok, err)
	}

	if err := s.Set("snapshot", []byte("v1")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := s.Get("snapshot")
	if err != nil || !ok || !bytes.Equal(got, []byte("v1")) {
		t.Fatalf("get: %q ok=%v err=%v", got, ok, err)
	}

	// Overwrite.
	if err := s.Set("snapshot", []byte("v2")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _, _ = s.Get("snapshot")
	if !bytes.Equal(got, []byte("v2")) {
		t.Fatalf("after overwrite: %q", got)
	}

	if err := s.Remove("snapshot"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := s.Get("snapshot"); ok {
		t.Fatalf("key survived remove")
	}

	// Removing an absent key is a no-op.
	if err := s.Remove("snapshot"); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := OpenSQLite(""); err == nil {
		t.Fatalf("empty path must error")
	}
}
