package persist

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// MemoryStore is a process-local Store, useful for tests and ephemeral
// sessions. Concurrency: protected by a mutex.
type MemoryStore struct {
	mu        sync.Mutex
	snapshots []Snapshot
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save replaces the stored snapshots.
func (s *MemoryStore) Save(snapshots []Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = make([]Snapshot, len(snapshots))
	copy(s.snapshots, snapshots)
	return nil
}

// Load returns a copy of the stored snapshots.
func (s *MemoryStore) Load() ([]Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Snapshot, len(s.snapshots))
	copy(out, s.snapshots)
	return out, nil
}

// FileStore persists snapshots as a JSON document. Writes go through a
// temporary file and rename so a crash mid-save never corrupts the previous
// snapshot.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Save writes the snapshots to disk.
func (s *FileStore) Save(snapshots []Snapshot) error {
	data, err := json.MarshalIndent(snapshots, "", "  ")
	if err != nil {
		return fmt.Errorf("persist: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("persist: temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("persist: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("persist: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("persist: rename: %w", err)
	}
	return nil
}

// Load reads snapshots from disk. A missing file yields an empty slice, not
// an error, so first runs need no special casing.
func (s *FileStore) Load() ([]Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("persist: read: %w", err)
	}

	var snapshots []Snapshot
	if err := json.Unmarshal(data, &snapshots); err != nil {
		return nil, fmt.Errorf("persist: unmarshal: %w", err)
	}
	return snapshots, nil
}
