package persist

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"rms-sync-service/internal/domain"
)

// File keeps the snapshot in a local JSON file, written atomically via
// rename. Used when no database is configured.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Load(ctx context.Context) (domain.Snapshot, bool, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return domain.Snapshot{}, false, nil
	}
	if err != nil {
		return domain.Snapshot{}, false, err
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.Snapshot{}, false, nil
	}
	return snap, true, nil
}

func (f *File) Save(ctx context.Context, snap domain.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
