package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
)

const stateTableDDL = `CREATE TABLE IF NOT EXISTS state (
	bucket TEXT PRIMARY KEY,
	payload TEXT NOT NULL
)`

// SQLBucketStore keeps each bucket as one row of the state table. It works with
// both the sqlite and postgres drivers; placeholders are rebound per driver.
type SQLBucketStore struct {
	db *sqlx.DB
}

// NewSQLBucketStore constructs the store.
func NewSQLBucketStore(db *sqlx.DB) *SQLBucketStore {
	return &SQLBucketStore{db: db}
}

// Migrate creates the state table when missing.
func (s *SQLBucketStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, stateTableDDL); err != nil {
		return fmt.Errorf("create state table: %w", err)
	}
	return nil
}

// Get fetches the payload stored for key.
func (s *SQLBucketStore) Get(ctx context.Context, key string) ([]byte, error) {
	var payload string
	query := s.db.Rebind(`SELECT payload FROM state WHERE bucket = ?`)
	if err := s.db.GetContext(ctx, &payload, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBucketNotFound
		}
		return nil, fmt.Errorf("select bucket %s: %w", key, err)
	}
	return []byte(payload), nil
}

// Put upserts every entry inside one transaction.
func (s *SQLBucketStore) Put(ctx context.Context, entries map[string][]byte) (retErr error) {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin state tx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	query := tx.Rebind(`INSERT INTO state(bucket, payload) VALUES(?, ?) ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload`)
	for _, key := range sortedKeys(entries) {
		if _, err := tx.ExecContext(ctx, query, key, string(entries[key])); err != nil {
			return fmt.Errorf("upsert %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit state tx: %w", err)
	}
	return nil
}

func sortedKeys(entries map[string][]byte) []string {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
