package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/peterbourgon/diskv/v3"
)

// DiskStore keeps each blob as a file under a base directory.
type DiskStore struct {
	d        *diskv.Diskv
	basePath string
}

// NewDiskStore creates basePath if needed and returns a flat diskv store
// with a 1MB read cache. Writes go through a temp dir and are atomic.
func NewDiskStore(basePath string) (*DiskStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	tmp := filepath.Join(basePath, ".tmp")
	if err := os.MkdirAll(tmp, 0o755); err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}
	return &DiskStore{
		d: diskv.New(diskv.Options{
			BasePath:     basePath,
			TempDir:      tmp,
			CacheSizeMax: 1024 * 1024,
		}),
		basePath: basePath,
	}, nil
}

// BasePath returns the directory blobs live in.
func (s *DiskStore) BasePath() string { return s.basePath }

func (s *DiskStore) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	val, err := s.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %q: %w", key, err)
	}
	return val, nil
}

func (s *DiskStore) Write(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.d.Write(key, value); err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}
