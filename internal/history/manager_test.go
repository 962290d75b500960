package history

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoad(t *testing.T) {
	m, err := NewManagerAt(filepath.Join(t.TempDir(), "history"))
	if err != nil {
		t.Fatalf("NewManagerAt failed: %v", err)
	}

	entries := []string{"el:e1", "~hello | kind:image"}
	if err := m.Save("fold.toml", entries); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := m.Load("fold.toml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 2 || loaded[0] != entries[0] || loaded[1] != entries[1] {
		t.Errorf("Expected %v, got %v", entries, loaded)
	}
}

func TestLoadMissingAndCorrupted(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManagerAt(dir)
	if err != nil {
		t.Fatalf("NewManagerAt failed: %v", err)
	}

	loaded, err := m.Load("missing.toml")
	if err != nil || len(loaded) != 0 {
		t.Errorf("Expected empty history for missing file, got %v, %v", loaded, err)
	}

	if err := os.WriteFile(filepath.Join(dir, "bad.toml"), []byte("entries = [unterminated"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	loaded, err = m.Load("bad.toml")
	if err != nil || len(loaded) != 0 {
		t.Errorf("Expected empty history for corrupted file, got %v, %v", loaded, err)
	}
}
