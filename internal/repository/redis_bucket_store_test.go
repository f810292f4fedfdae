package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisBucketStoreWrapsTransportErrors(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	defer client.Close()
	store := NewRedisBucketStore(client)

	_, err := store.Get(context.Background(), "givegoa_requests")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBucketNotFound)

	require.NoError(t, store.Put(context.Background(), nil))
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	var dest map[string]string
	require.Error(t, repo.Get(context.Background(), "dashboard", &dest))
	require.NoError(t, repo.Set(context.Background(), "dashboard", map[string]string{"a": "b"}, time.Minute))
	require.NoError(t, repo.DeleteByPattern(context.Background(), "dashboard:*"))
}
