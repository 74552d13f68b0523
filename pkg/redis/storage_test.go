package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/samueltorres/r8counter/pkg/counter"
	"github.com/samueltorres/r8counter/pkg/counter/countertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage(t *testing.T) {
	countertest.TestStorage(t, func(t *testing.T) counter.Storage {
		s, _ := newTestStorage(t)
		return s
	})
}

func TestStorage_KeyPrefix(t *testing.T) {
	s, mr := newTestStorage(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "foo")
	require.NoError(t, err)
	_, err = s.Increment(ctx, "foo")
	require.NoError(t, err)

	got, err := mr.Get(DefaultPrefix + "foo")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestStorage_NonIntegerValue(t *testing.T) {
	s, mr := newTestStorage(t)
	require.NoError(t, mr.Set(DefaultPrefix+"broken", "not-a-number"))

	_, err := s.Get(context.Background(), "broken")
	assert.Error(t, err)
	assert.Equal(t, counter.ResultError, counter.Classify(err))
}

func TestStorage_ServerDown(t *testing.T) {
	s, mr := newTestStorage(t)
	mr.Close()

	_, err := s.Create(context.Background(), "foo")
	assert.Error(t, err)
	assert.Equal(t, counter.ResultError, counter.Classify(err))
}

func newTestStorage(t *testing.T) (*Storage, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	s := NewStorage(client, "")
	t.Cleanup(func() { s.Close() })
	return s, mr
}
