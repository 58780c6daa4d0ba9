package reminder

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// StateStore persists the set of task IDs that have already been alerted
// in the current session.
type StateStore interface {
	// Load returns the persisted set of alerted task IDs
	Load() ([]uint64, error)

	// Save replaces the persisted set
	Save(ids []uint64) error
}

// MemoryStore keeps the alerted set in memory only. It is the default for
// embedded use and for tests.
type MemoryStore struct {
	mu  sync.Mutex
	ids []uint64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uint64, len(s.ids))
	copy(ids, s.ids)
	return ids, nil
}

func (s *MemoryStore) Save(ids []uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids = make([]uint64, len(ids))
	copy(s.ids, ids)
	return nil
}

// FileStore persists the alerted set as a JSON array so a client session
// survives a restart of the same session. Deleting the file starts a
// fresh session.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore writing to the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Load() ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var ids []uint64
	if err := json.Unmarshal(data, &ids); err != nil {
		// A corrupt state file means a fresh session, not a failure.
		return nil, nil
	}
	return ids, nil
}

func (s *FileStore) Save(ids []uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ids == nil {
		ids = []uint64{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
