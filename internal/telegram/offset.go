package telegram

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// OffsetStore persists the last processed update id as a plaintext integer.
type OffsetStore struct {
	Path string
}

// Load returns the stored id, or 0 when the file is missing or unreadable.
func (s OffsetStore) Load() int64 {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return 0
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// Save writes id atomically: a temp file in the same directory is synced
// and renamed over the target.
func (s OffsetStore) Save(id int64) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("offset dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("offset temp: %w", err)
	}
	name := tmp.Name()
	cleanup := func() { _ = os.Remove(name) }

	if _, err := tmp.WriteString(strconv.FormatInt(id, 10)); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("offset write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("offset sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("offset close: %w", err)
	}
	if err := os.Rename(name, s.Path); err != nil {
		cleanup()
		return fmt.Errorf("offset rename: %w", err)
	}
	return nil
}
