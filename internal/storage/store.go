// Package storage persists the application snapshot as a single serialized
// blob under one key, behind interchangeable key-value backends.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"savings/internal/core"
)

// DefaultKey is the key the snapshot blob is stored under.
const DefaultKey = "savingsAppData"

var (
	// ErrNotFound is returned when no blob exists under a key.
	ErrNotFound = errors.New("blob not found")
	// ErrMalformed is returned when a stored blob does not decode.
	ErrMalformed = errors.New("snapshot malformed")
)

// BlobStore is a flat key-value store of opaque byte blobs.
type BlobStore interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, value []byte) error
}

// Snapshot is the durable part of the application state.
type Snapshot struct {
	Savings        []core.Goal `json:"savings"`
	NextID         int         `json:"nextId"`
	FilterCategory string      `json:"filterCategory"`
	SortBy         string      `json:"sortBy"`
	Theme          string      `json:"theme"`
}

// StateStore encodes snapshots to JSON and keeps them in a BlobStore.
type StateStore struct {
	blobs BlobStore
	key   string
}

// NewStateStore returns a StateStore writing under key, or DefaultKey if empty.
func NewStateStore(blobs BlobStore, key string) *StateStore {
	if key == "" {
		key = DefaultKey
	}
	return &StateStore{blobs: blobs, key: key}
}

// Key returns the storage key in use.
func (s *StateStore) Key() string { return s.key }

// Load reads and decodes the snapshot. A missing blob yields ErrNotFound;
// a blob that is not valid JSON yields ErrMalformed wrapping the decode error.
func (s *StateStore) Load(ctx context.Context) (Snapshot, error) {
	raw, err := s.blobs.Read(ctx, s.key)
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot %q: %w: %w", s.key, ErrMalformed, err)
	}
	return snap, nil
}

// Save encodes and writes the snapshot.
func (s *StateStore) Save(ctx context.Context, snap Snapshot) error {
	if snap.Savings == nil {
		snap.Savings = []core.Goal{}
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.blobs.Write(ctx, s.key, raw); err != nil {
		return fmt.Errorf("write snapshot %q: %w", s.key, err)
	}
	return nil
}
