package repository

import (
	"context"
	"errors"
	"sync"
)

// ErrBucketNotFound is returned by a BucketStore when a key has never been written.
var ErrBucketNotFound = errors.New("bucket not found")

// BucketStore persists opaque JSON payloads under string keys.
type BucketStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Put writes every entry or none of them.
	Put(ctx context.Context, entries map[string][]byte) error
}

// MemoryBucketStore keeps buckets in process memory.
type MemoryBucketStore struct {
	mu      sync.RWMutex
	buckets map[string][]byte
}

// NewMemoryBucketStore constructs an empty in-memory store.
func NewMemoryBucketStore() *MemoryBucketStore {
	return &MemoryBucketStore{buckets: make(map[string][]byte)}
}

// Get returns a copy of the stored payload.
func (s *MemoryBucketStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.buckets[key]
	if !ok {
		return nil, ErrBucketNotFound
	}
	return append([]byte(nil), payload...), nil
}

// Put stores copies of all entries under a single lock.
func (s *MemoryBucketStore) Put(_ context.Context, entries map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, payload := range entries {
		s.buckets[key] = append([]byte(nil), payload...)
	}
	return nil
}
