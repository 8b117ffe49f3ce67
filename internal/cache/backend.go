// File path: internal/cache/backend.go
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Backend abstracts the durable storage holding the serialized cache blob.
// Load returns the last saved blob, or nil when nothing has been stored yet.
// Both operations return their failure so callers can log it; the store
// itself never lets a backend fault escape into the lookup flow.
type Backend interface {
	Load() ([]byte, error)
	Save(blob []byte) error
}

// FileBackend persists the blob as a single file, written atomically via a
// temp file and rename so readers never observe a partial write.
type FileBackend struct {
	path string
}

// NewFileBackend prepares a file-backed store at the given path, creating
// parent directories as needed.
func NewFileBackend(path string) (*FileBackend, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, errors.New("backend path required")
	}
	if dir := filepath.Dir(trimmed); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create backend dir: %w", err)
		}
	}
	return &FileBackend{path: trimmed}, nil
}

func (b *FileBackend) Load() ([]byte, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache blob: %w", err)
	}
	return data, nil
}

func (b *FileBackend) Save(blob []byte) error {
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0o644); err != nil {
		return fmt.Errorf("write cache blob: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace cache blob: %w", err)
	}
	return nil
}
