package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLBucketStoreMock(t *testing.T) (*SQLBucketStore, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return NewSQLBucketStore(sqlxDB), mock, func() {
		sqlxDB.Close()
	}
}

func TestSQLBucketStoreGet(t *testing.T) {
	store, mock, cleanup := newSQLBucketStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT payload FROM state WHERE bucket = \$1`).
		WithArgs("givegoa_weights").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(`{"urgency":30}`))

	payload, err := store.Get(context.Background(), "givegoa_weights")
	require.NoError(t, err)
	assert.JSONEq(t, `{"urgency":30}`, string(payload))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLBucketStoreGetMissing(t *testing.T) {
	store, mock, cleanup := newSQLBucketStoreMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT payload FROM state").
		WithArgs("givegoa_logs").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	_, err := store.Get(context.Background(), "givegoa_logs")
	require.ErrorIs(t, err, ErrBucketNotFound)
}

func TestSQLBucketStorePutUsesSingleTransaction(t *testing.T) {
	store, mock, cleanup := newSQLBucketStoreMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO state").
		WithArgs("givegoa_logs", "[]").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO state").
		WithArgs("givegoa_requests", `[{"id":"r1"}]`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.Put(context.Background(), map[string][]byte{
		"givegoa_requests": []byte(`[{"id":"r1"}]`),
		"givegoa_logs":     []byte(`[]`),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLBucketStorePutRollsBackOnFailure(t *testing.T) {
	store, mock, cleanup := newSQLBucketStoreMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO state").
		WithArgs("givegoa_logs", "[]").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO state").
		WithArgs("givegoa_resources", "[]").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.Put(context.Background(), map[string][]byte{
		"givegoa_logs":      []byte(`[]`),
		"givegoa_resources": []byte(`[]`),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "givegoa_resources")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLBucketStoreMigrate(t *testing.T) {
	store, mock, cleanup := newSQLBucketStoreMock(t)
	defer cleanup()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS state").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, store.Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
