package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gonewton"
	"github.com/njchilds90/gonewton/internal/adapters/redis"
	"github.com/njchilds90/gonewton/internal/archive"
)

func setup(t *testing.T, opts ...redis.Option) (*miniredis.Miniredis, *redis.Store) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redis.NewFromClient(client, opts...)
	t.Cleanup(func() { _ = store.Close() })
	return mr, store
}

func newRun() *archive.Run {
	req := gonewton.Request{Expression: "x^2 - 4", InitialGuess: "1", StopPercent: "0.1"}
	return archive.NewRun(req, gonewton.Calculate(req))
}

func TestRedisStore_Contract(t *testing.T) {
	_, store := setup(t)
	archive.RunStoreContract(t, store)
}

func TestRedisStore_ContractWithTTL(t *testing.T) {
	_, store := setup(t, redis.WithTTL(time.Hour))
	archive.RunStoreContract(t, store)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, store := setup(t, redis.WithPrefix("test:"))
	run := newRun()
	require.NoError(t, store.Save(context.Background(), run))

	assert.True(t, mr.Exists("test:"+run.ID))
	assert.True(t, mr.Exists("test:index"))
}

func TestRedisStore_Expiry(t *testing.T) {
	ctx := context.Background()
	mr, store := setup(t, redis.WithTTL(time.Minute))
	run := newRun()
	require.NoError(t, store.Save(ctx, run))
	assert.Equal(t, time.Minute, mr.TTL("gonewton:run:"+run.ID))

	mr.FastForward(2 * time.Minute)
	_, err := store.Load(ctx, run.ID)
	assert.ErrorIs(t, err, archive.ErrNotFound)
}

func TestRedisStore_Ping(t *testing.T) {
	mr, store := setup(t)
	require.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}
