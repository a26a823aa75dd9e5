package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	errs "github.com/matzehuels/scalelist/pkg/errors"
	"github.com/matzehuels/scalelist/pkg/node"
)

// FileStore keeps one JSON file per snapshot in a config directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a file-based store.
// If baseDir is empty, defaults to ~/.config/scalelist/nodes/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = dir
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create node dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) nodePath(name string) string {
	return filepath.Join(s.baseDir, name+".json")
}

func (s *FileStore) read(name string) (*Snapshot, error) {
	data, err := os.ReadFile(s.nodePath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(name)
		}
		return nil, fmt.Errorf("read node file: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse node %q: %w", name, err)
	}
	return &snap, nil
}

func (s *FileStore) Put(ctx context.Context, name string, in node.Inputs) (*Snapshot, error) {
	if err := checkPut(name, in); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read(name)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	snap := upsert(existing, name, in)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal node: %w", err)
	}
	tmp, err := os.CreateTemp(s.baseDir, ".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("write node file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write node file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("write node file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.nodePath(name)); err != nil {
		return nil, fmt.Errorf("write node file: %w", err)
	}
	return snap, nil
}

func (s *FileStore) Get(ctx context.Context, name string) (*Snapshot, error) {
	if err := errs.ValidateNodeName(name); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(name)
}

func (s *FileStore) List(ctx context.Context) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read node dir: %w", err)
	}

	var out []Snapshot
	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), ".json")
		if entry.IsDir() || !ok || strings.HasPrefix(name, ".") {
			continue
		}
		snap, err := s.read(name)
		if err != nil {
			return nil, err
		}
		out = append(out, *snap)
	}
	slices.SortFunc(out, func(a, b Snapshot) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := errs.ValidateNodeName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.nodePath(name)); err != nil {
		if os.IsNotExist(err) {
			return notFound(name)
		}
		return fmt.Errorf("remove node file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for node files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
