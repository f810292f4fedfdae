package repository

import (
	"context"
	"errors"
	"time"
)

type storeObserver interface {
	ObserveStoreOperation(operation string, failed bool, duration time.Duration)
}

// InstrumentedBucketStore times every call to the wrapped store.
type InstrumentedBucketStore struct {
	next     BucketStore
	observer storeObserver
}

// NewInstrumentedBucketStore wraps next. A nil observer returns next unchanged.
func NewInstrumentedBucketStore(next BucketStore, observer storeObserver) BucketStore {
	if observer == nil {
		return next
	}
	return &InstrumentedBucketStore{next: next, observer: observer}
}

// Get delegates and records the read. A missing bucket is not a failure.
func (s *InstrumentedBucketStore) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	payload, err := s.next.Get(ctx, key)
	s.observer.ObserveStoreOperation("get", err != nil && !errors.Is(err, ErrBucketNotFound), time.Since(start))
	return payload, err
}

// Put delegates and records the write.
func (s *InstrumentedBucketStore) Put(ctx context.Context, entries map[string][]byte) error {
	start := time.Now()
	err := s.next.Put(ctx, entries)
	s.observer.ObserveStoreOperation("put", err != nil, time.Since(start))
	return err
}
