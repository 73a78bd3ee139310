package telegram

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOffsetStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "offset.dat")
	s := OffsetStore{Path: path}

	if got := s.Load(); got != 0 {
		t.Fatalf("missing file should load 0, got %d", got)
	}
	if err := s.Save(42); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := s.Load(); got != 42 {
		t.Fatalf("Load = %d", got)
	}
	b, _ := os.ReadFile(path)
	if string(b) != "42" {
		t.Fatalf("file content = %q", b)
	}
	if err := s.Save(43); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := s.Load(); got != 43 {
		t.Fatalf("Load = %d", got)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestOffsetStore_Garbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offset.dat")
	for _, content := range []string{"abc", "-5", ""} {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
		if got := (OffsetStore{Path: path}).Load(); got != 0 {
			t.Fatalf("content %q loaded as %d", content, got)
		}
	}
	if err := os.WriteFile(path, []byte(" 17\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := (OffsetStore{Path: path}).Load(); got != 17 {
		t.Fatalf("whitespace should be trimmed, got %d", got)
	}
}
