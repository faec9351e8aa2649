// Package source provides document-source backends for corpus ingestion.
package source

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"holyverses/internal/devo"
)

// DirSource reads corpus documents from a directory on disk. Subdirectories
// are ignored; the corpus namespace is flat, one document per book.
type DirSource struct {
	dir string
}

var _ devo.DocumentSource = (*DirSource)(nil)

// NewDirSource creates a document source over the given directory.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// List returns the names of the regular files in the directory.
func (s *DirSource) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("listing corpus directory %s: %w", s.dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Read returns the content of one named document.
func (s *DirSource) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("reading corpus document %s: %w", name, err)
	}
	return data, nil
}

// MemorySource is an in-memory document source. Safe for concurrent use.
// Useful in tests and as a seam for embedded corpora.
type MemorySource struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

var _ devo.DocumentSource = (*MemorySource)(nil)

// NewMemorySource creates an empty in-memory source.
func NewMemorySource() *MemorySource {
	return &MemorySource{docs: make(map[string][]byte)}
}

// Add stores a named document, replacing any previous content.
func (s *MemorySource) Add(name string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[name] = content
}

// Remove deletes a named document if present.
func (s *MemorySource) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, name)
}

func (s *MemorySource) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.docs))
	for name := range s.docs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemorySource) Read(name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.docs[name]
	if !ok {
		return nil, fmt.Errorf("document not found: %s", name)
	}
	return content, nil
}
