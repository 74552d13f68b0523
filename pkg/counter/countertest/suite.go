// Package countertest holds the behaviour every counter.Storage must show.
package countertest

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/samueltorres/r8counter/pkg/counter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStorage runs the storage conformance suite. newStorage must return an
// empty storage on every call.
func TestStorage(t *testing.T, newStorage func(t *testing.T) counter.Storage) {
	t.Run("Create", func(t *testing.T) { testCreate(t, newStorage(t)) })
	t.Run("CreateDuplicate", func(t *testing.T) { testCreateDuplicate(t, newStorage(t)) })
	t.Run("Get", func(t *testing.T) { testGet(t, newStorage(t)) })
	t.Run("Increment", func(t *testing.T) { testIncrement(t, newStorage(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newStorage(t)) })
	t.Run("RecreateAfterDelete", func(t *testing.T) { testRecreateAfterDelete(t, newStorage(t)) })
	t.Run("Isolation", func(t *testing.T) { testIsolation(t, newStorage(t)) })
	t.Run("ConcurrentIncrement", func(t *testing.T) { testConcurrentIncrement(t, newStorage(t)) })
	t.Run("ConcurrentCreate", func(t *testing.T) { testConcurrentCreate(t, newStorage(t)) })
}

func testCreate(t *testing.T, s counter.Storage) {
	got, err := s.Create(context.Background(), "foo")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)
}

func testCreateDuplicate(t *testing.T, s counter.Storage) {
	ctx := context.Background()
	_, err := s.Create(ctx, "bar")
	require.NoError(t, err)

	_, err = s.Increment(ctx, "bar")
	require.NoError(t, err)

	_, err = s.Create(ctx, "bar")
	assert.ErrorIs(t, err, counter.ErrConflict)

	// a failed create leaves the existing value untouched
	got, err := s.Get(ctx, "bar")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func testGet(t *testing.T, s counter.Storage) {
	ctx := context.Background()
	_, err := s.Get(ctx, "readCounter")
	assert.ErrorIs(t, err, counter.ErrNotFound)

	_, err = s.Create(ctx, "readCounter")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		got, err := s.Get(ctx, "readCounter")
		require.NoError(t, err)
		assert.Equal(t, int64(0), got)
	}
}

func testIncrement(t *testing.T, s counter.Storage) {
	ctx := context.Background()
	_, err := s.Increment(ctx, "updateCounter")
	assert.ErrorIs(t, err, counter.ErrNotFound)

	old, err := s.Create(ctx, "updateCounter")
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		got, err := s.Increment(ctx, "updateCounter")
		require.NoError(t, err)
		assert.Greater(t, got, old)
		assert.Equal(t, int64(i), got)
		old = got
	}

	got, err := s.Get(ctx, "updateCounter")
	require.NoError(t, err)
	assert.Equal(t, int64(5), got)
}

func testDelete(t *testing.T, s counter.Storage) {
	ctx := context.Background()
	err := s.Delete(ctx, "fakeCounter")
	assert.ErrorIs(t, err, counter.ErrNotFound)

	_, err = s.Create(ctx, "deleteCounter")
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "deleteCounter"))

	_, err = s.Get(ctx, "deleteCounter")
	assert.ErrorIs(t, err, counter.ErrNotFound)

	err = s.Delete(ctx, "deleteCounter")
	assert.ErrorIs(t, err, counter.ErrNotFound)
}

func testRecreateAfterDelete(t *testing.T, s counter.Storage) {
	ctx := context.Background()
	_, err := s.Create(ctx, "phoenix")
	require.NoError(t, err)
	_, err = s.Increment(ctx, "phoenix")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "phoenix"))

	got, err := s.Create(ctx, "phoenix")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)
}

func testIsolation(t *testing.T, s counter.Storage) {
	ctx := context.Background()
	for _, name := range []string{"a", "b"} {
		_, err := s.Create(ctx, name)
		require.NoError(t, err)
	}

	_, err := s.Increment(ctx, "a")
	require.NoError(t, err)

	got, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)
}

func testConcurrentIncrement(t *testing.T, s counter.Storage) {
	ctx := context.Background()
	_, err := s.Create(ctx, "key")
	require.NoError(t, err)

	wg := sync.WaitGroup{}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				// assert, not require: FailNow must run on the test goroutine
				_, err := s.Increment(ctx, "key")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, int64(100), got)
}

func testConcurrentCreate(t *testing.T, s counter.Storage) {
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mux     sync.Mutex
		created int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Create(ctx, "race")
			if err == nil {
				mux.Lock()
				created++
				mux.Unlock()
				return
			}
			if !errors.Is(err, counter.ErrConflict) {
				t.Errorf("unexpected create error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}
