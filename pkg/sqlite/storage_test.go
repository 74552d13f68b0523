package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/samueltorres/r8counter/pkg/counter"
	"github.com/samueltorres/r8counter/pkg/counter/countertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage(t *testing.T) {
	countertest.TestStorage(t, func(t *testing.T) counter.Storage {
		s, err := NewStorage(DefaultDSN)
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestStorage_FileDatabase(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "counters.db")
	ctx := context.Background()

	s, err := NewStorage(dsn)
	require.NoError(t, err)
	_, err = s.Create(ctx, "foo")
	require.NoError(t, err)
	_, err = s.Increment(ctx, "foo")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = NewStorage(dsn)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.Get(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestStorage_Closed(t *testing.T) {
	s, err := NewStorage(DefaultDSN)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Get(context.Background(), "foo")
	assert.Error(t, err)
	assert.Equal(t, counter.ResultError, counter.Classify(err))
}
