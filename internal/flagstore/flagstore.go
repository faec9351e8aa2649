// Package flagstore persists small installation flags, such as whether
// first-time corpus ingestion has completed.
package flagstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"

	"holyverses/internal/devo"
)

// FileStore keeps flags in a single TOML file on disk. Reads and writes go
// through a mutex, so one FileStore is safe for concurrent use; concurrent
// processes are not coordinated.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ devo.FlagStore = (*FileStore)(nil)

// NewFileStore creates a store backed by the file at path. The file is
// created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) GetBool(key string, def bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	flags, err := s.load()
	if err != nil {
		return false, err
	}
	v, ok := flags[key]
	if !ok {
		return def, nil
	}
	return v, nil
}

func (s *FileStore) SetBool(key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	flags, err := s.load()
	if err != nil {
		return err
	}
	flags[key] = value
	return s.save(flags)
}

func (s *FileStore) load() (map[string]bool, error) {
	flags := make(map[string]bool)
	if _, err := toml.DecodeFile(s.path, &flags); err != nil {
		if os.IsNotExist(err) {
			return flags, nil
		}
		return nil, fmt.Errorf("reading flags from %s: %w", s.path, err)
	}
	return flags, nil
}

func (s *FileStore) save(flags map[string]bool) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating flag directory: %w", err)
	}
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("creating flag file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(flags); err != nil {
		return fmt.Errorf("writing flags to %s: %w", s.path, err)
	}
	return nil
}

// MemoryStore keeps flags in memory, for tests and the memory database mode.
type MemoryStore struct {
	mu    sync.Mutex
	flags map[string]bool
}

var _ devo.FlagStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{flags: make(map[string]bool)}
}

func (s *MemoryStore) GetBool(key string, def bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.flags[key]
	if !ok {
		return def, nil
	}
	return v, nil
}

func (s *MemoryStore) SetBool(key string, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flags[key] = value
	return nil
}
