package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileBackend persists the blob as a single JSON file named after the store
// key. Writes go to a temporary file first and are swapped in with an atomic
// rename, so a crash mid-write leaves either the old blob or the new one,
// never a torn file.
type FileBackend struct {
	dir string
	key string
}

// NewFileBackend creates the data directory if needed and returns a backend
// writing <dir>/<key>.json.
func NewFileBackend(dir, key string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileBackend{dir: dir, key: key}, nil
}

func (b *FileBackend) path() string {
	return filepath.Join(b.dir, b.key+".json")
}

// Load implements Backend.
func (b *FileBackend) Load(_ context.Context) (Blob, bool, error) {
	raw, err := os.ReadFile(b.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read blob file: %w", err)
	}

	var blob Blob
	if err := json.Unmarshal(raw, &blob); err != nil {
		return nil, false, fmt.Errorf("unmarshal blob file: %w", err)
	}
	return blob, true, nil
}

// Save implements Backend.
func (b *FileBackend) Save(_ context.Context, blob Blob) error {
	raw, err := json.MarshalIndent(blob, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal blob: %w", err)
	}

	tempPath := b.path() + ".tmp"
	if err := os.WriteFile(tempPath, raw, 0o644); err != nil {
		return fmt.Errorf("write temp blob: %w", err)
	}
	if err := os.Rename(tempPath, b.path()); err != nil {
		return fmt.Errorf("swap blob file: %w", err)
	}
	return nil
}
