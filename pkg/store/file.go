package store

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// FileStore keeps builds as files in a directory: <id>.json holds the
// record and <id>.<format> the image.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a store in dir, creating the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) recordPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *FileStore) artifactPath(id, format string) string {
	return filepath.Join(s.dir, id+"."+format)
}

// Save writes the record and the artifact of b.
func (s *FileStore) Save(ctx context.Context, b *Build) error {
	if !ValidID(b.ID) {
		return fmt.Errorf("invalid build id %q", b.ID)
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal build: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.WriteFile(s.artifactPath(b.ID, b.Format), b.Artifact, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	// The record is written last; a build without a record does not exist.
	if err := os.WriteFile(s.recordPath(b.ID), data, 0o644); err != nil {
		return fmt.Errorf("write build: %w", err)
	}
	return nil
}

// Get reads the build with the given id and its artifact.
func (s *FileStore) Get(ctx context.Context, id string) (*Build, error) {
	if !ValidID(id) {
		return nil, notFound(id)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	b, err := s.readRecord(id)
	if err != nil {
		return nil, err
	}
	art, err := os.ReadFile(s.artifactPath(id, b.Format))
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	b.Artifact = art
	return b, nil
}

func (s *FileStore) readRecord(id string) (*Build, error) {
	data, err := os.ReadFile(s.recordPath(id))
	if os.IsNotExist(err) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("read build: %w", err)
	}
	var b Build
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse build %s: %w", id, err)
	}
	return &b, nil
}

// List returns up to limit builds, newest first.
func (s *FileStore) List(ctx context.Context, limit int) ([]Build, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}

	var builds []Build
	for _, e := range entries {
		id, ok := strings.CutSuffix(e.Name(), ".json")
		if !ok || !ValidID(id) {
			continue
		}
		b, err := s.readRecord(id)
		if err != nil {
			continue
		}
		builds = append(builds, *b)
	}

	slices.SortFunc(builds, func(a, b Build) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if n := listLimit(limit); len(builds) > n {
		builds = builds[:n]
	}
	return builds, nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }
