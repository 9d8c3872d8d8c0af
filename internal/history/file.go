package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"supplyscope/internal/model"
)

// FileStore persists the series as a JSON array, written atomically via a
// temp file and rename.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes the full series to disk.
func (f *FileStore) Save(entries []model.BurnHistoryEntry) error {
	dir := filepath.Dir(f.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history dir: %w", err)
		}
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write history tmp: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("rename history: %w", err)
	}
	return nil
}

// Load reads the persisted series, truncated to the last max entries. A
// missing file yields an empty series.
func (f *FileStore) Load(max int) ([]model.BurnHistoryEntry, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history: %w", err)
	}

	var entries []model.BurnHistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse history: %w", err)
	}

	if max > 0 && len(entries) > max {
		entries = entries[len(entries)-max:]
	}
	return entries, nil
}
