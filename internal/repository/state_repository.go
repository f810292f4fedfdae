package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/givegoa/givegoa-api/internal/models"
)

// DefaultKeyPrefix namespaces the persisted collections.
const DefaultKeyPrefix = "givegoa_"

// MutateFunc applies a change to state and reports which collections it touched.
// Returning an error discards the change.
type MutateFunc func(state *models.State) ([]models.Collection, error)

// CommitHook runs after a successful write.
type CommitHook func(ctx context.Context, touched []models.Collection)

// StateRepository loads and writes the application collections over a BucketStore.
type StateRepository struct {
	store  BucketStore
	prefix string
	logger *zap.Logger

	mu    sync.Mutex
	hooks []CommitHook
}

// NewStateRepository constructs the repository.
func NewStateRepository(store BucketStore, prefix string, logger *zap.Logger) *StateRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &StateRepository{store: store, prefix: prefix, logger: logger}
}

// OnCommit registers a hook invoked after every successful Save or Mutate.
func (r *StateRepository) OnCommit(hook CommitHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, hook)
}

// Key returns the storage key for a collection.
func (r *StateRepository) Key(collection models.Collection) string {
	return r.prefix + string(collection)
}

// Load reads every collection. Missing collections are seeded with defaults; unreadable
// payloads fall back to the same defaults.
func (r *StateRepository) Load(ctx context.Context) (*models.State, error) {
	state := &models.State{}
	defaults := models.DefaultState()

	for _, collection := range models.Collections {
		key := r.Key(collection)
		raw, err := r.store.Get(ctx, key)
		if err != nil && !errors.Is(err, ErrBucketNotFound) {
			return nil, fmt.Errorf("load %s: %w", collection, err)
		}
		missing := errors.Is(err, ErrBucketNotFound)

		switch collection {
		case models.CollectionRequests:
			state.Requests = defaults.Requests
			if !missing {
				var requests []models.SocialRequest
				if r.decode(key, raw, &requests) == nil {
					state.Requests = nonNil(requests)
				}
			}
		case models.CollectionResources:
			state.Resources = defaults.Resources
			if !missing {
				var resources []models.ResourceItem
				if r.decode(key, raw, &resources) == nil {
					state.Resources = nonNil(resources)
				}
			}
		case models.CollectionLogs:
			state.Logs = defaults.Logs
			if !missing {
				var logs []models.AuditLogEntry
				if r.decode(key, raw, &logs) == nil {
					state.Logs = nonNil(logs)
				}
			}
		case models.CollectionWeights:
			state.Weights = defaults.Weights
			if !missing {
				var weights models.PriorityWeights
				if r.decode(key, raw, &weights) == nil {
					state.Weights = weights
				}
			}
		}
	}

	return state, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func (r *StateRepository) decode(key string, raw []byte, dest interface{}) error {
	if err := json.Unmarshal(raw, dest); err != nil {
		r.logger.Warn("discarding unreadable collection, using defaults", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

// Save overwrites the named collections (all of them when none are named) in one atomic write.
func (r *StateRepository) Save(ctx context.Context, state *models.State, collections ...models.Collection) error {
	if err := r.save(ctx, state, collections); err != nil {
		return err
	}
	r.notify(ctx, collections)
	return nil
}

func (r *StateRepository) save(ctx context.Context, state *models.State, collections []models.Collection) error {
	if state == nil {
		return errors.New("save: nil state")
	}
	if len(collections) == 0 {
		collections = models.Collections
	}

	entries := make(map[string][]byte, len(collections))
	for _, collection := range collections {
		var value interface{}
		switch collection {
		case models.CollectionRequests:
			value = state.Requests
		case models.CollectionResources:
			value = state.Resources
		case models.CollectionLogs:
			value = state.Logs
		case models.CollectionWeights:
			value = state.Weights
		default:
			return fmt.Errorf("save: unknown collection %q", collection)
		}
		payload, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", collection, err)
		}
		entries[r.Key(collection)] = payload
	}

	if err := r.store.Put(ctx, entries); err != nil {
		return fmt.Errorf("save collections: %w", err)
	}
	return nil
}

// Mutate serialises in-process writers: it loads the current state, applies fn and writes
// back the collections fn touched. The committed state is returned.
func (r *StateRepository) Mutate(ctx context.Context, fn MutateFunc) (*models.State, error) {
	state, touched, err := r.mutate(ctx, fn)
	if err != nil {
		return nil, err
	}
	if len(touched) > 0 {
		r.notify(ctx, touched)
	}
	return state, nil
}

func (r *StateRepository) mutate(ctx context.Context, fn MutateFunc) (*models.State, []models.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := r.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	touched, err := fn(state)
	if err != nil {
		return nil, nil, err
	}
	if len(touched) == 0 {
		return state, nil, nil
	}
	if err := r.save(ctx, state, touched); err != nil {
		return nil, nil, err
	}
	return state, touched, nil
}

func (r *StateRepository) notify(ctx context.Context, touched []models.Collection) {
	if len(touched) == 0 {
		touched = models.Collections
	}
	r.mu.Lock()
	hooks := append([]CommitHook(nil), r.hooks...)
	r.mu.Unlock()
	for _, hook := range hooks {
		hook(ctx, touched)
	}
}
