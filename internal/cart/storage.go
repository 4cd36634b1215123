package cart

import (
	"errors"
	"io/fs"
	"path"
	"sync"

	"github.com/spf13/afero"
)

// Storage is the key/value area the cart persists into.
type Storage interface {
	// Get returns nil, nil when the key was never set.
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Remove(key string) error
}

type MemoryStorage struct {
	mu sync.Mutex
	m  map[string][]byte
}

func NewMemoryStorage() *MemoryStorage { return &MemoryStorage{m: map[string][]byte{}} }

func (s *MemoryStorage) Get(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStorage) Set(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStorage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

// FileStorage keeps one <key>.json file per key under dir.
type FileStorage struct {
	fs  afero.Fs
	dir string
}

func NewFileStorage(fsys afero.Fs, dir string) *FileStorage {
	return &FileStorage{fs: fsys, dir: dir}
}

func (s *FileStorage) file(key string) string { return path.Join(s.dir, key+".json") }

func (s *FileStorage) Get(key string) ([]byte, error) {
	b, err := afero.ReadFile(s.fs, s.file(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return b, err
}

func (s *FileStorage) Set(key string, value []byte) error {
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return afero.WriteFile(s.fs, s.file(key), value, 0o644)
}

func (s *FileStorage) Remove(key string) error {
	err := s.fs.Remove(s.file(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
