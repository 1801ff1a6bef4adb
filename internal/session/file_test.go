package session

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStore_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "saves")
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "pocket-grove-save-v1"); err != nil || ok {
		t.Fatalf("Expected no record yet, got ok=%v err=%v", ok, err)
	}

	if err := store.Put(ctx, "pocket-grove-save-v1", []byte("first")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, "pocket-grove-save-v1", []byte("second")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, "pocket-grove-save-v1")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if string(got) != "second" {
		t.Errorf("Expected 'second', got '%s'", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected exactly one file (no temp leftovers), got %d", len(entries))
	}

	if err := store.Delete(ctx, "pocket-grove-save-v1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "pocket-grove-save-v1"); ok {
		t.Error("Expected record gone after Delete")
	}
}

func TestFileStore_KeysStayInDir(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := store.Put(context.Background(), "../../escape", []byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || strings.Contains(entries[0].Name(), "..") {
		t.Errorf("Expected a single hex-named file in the store dir, got %v", entries)
	}
}
