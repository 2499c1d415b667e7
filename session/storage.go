package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// MemoryStorage keeps the session for the lifetime of the process.
type MemoryStorage struct {
	mu     sync.Mutex
	stored *Persisted
}

var _ Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Load() (*Persisted, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stored == nil {
		return nil, nil
	}
	cp := *m.stored
	return &cp, nil
}

func (m *MemoryStorage) Save(p *Persisted) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.stored = &cp
	return nil
}

func (m *MemoryStorage) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = nil
	return nil
}

// FileStorage keeps the session as a JSON document on disk so it survives
// restarts.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

var _ Storage = (*FileStorage)(nil)

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (f *FileStorage) Load() (*Persisted, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[FileStorage.Load] os.ReadFile")
	}

	p := &Persisted{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, errors.Wrap(err, "[FileStorage.Load] json.Unmarshal")
	}
	return p, nil
}

func (f *FileStorage) Save(p *Persisted) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "[FileStorage.Save] json.Marshal")
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return errors.Wrap(err, "[FileStorage.Save] os.MkdirAll")
	}
	if err := os.WriteFile(f.path, data, 0o600); err != nil {
		return errors.Wrap(err, "[FileStorage.Save] os.WriteFile")
	}
	return nil
}

func (f *FileStorage) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "[FileStorage.Clear] os.Remove")
	}
	return nil
}
