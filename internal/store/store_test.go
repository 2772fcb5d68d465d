package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeUnderTest runs the same suite against every DocumentStore
// implementation.
func storeUnderTest(t *testing.T, newStore func(t *testing.T) DocumentStore) {
	ctx := context.Background()

	t.Run("get missing document", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		s := newStore(t)
		doc := Document{
			ID:        "doc-1",
			Body:      `{"a":1}`,
			CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		}
		require.NoError(t, s.Put(ctx, doc))

		got, err := s.Get(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, doc.Body, got.Body)
		assert.True(t, got.CreatedAt.Equal(doc.CreatedAt))
	})

	t.Run("put overwrites body", func(t *testing.T) {
		s := newStore(t)
		base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		require.NoError(t, s.Put(ctx, Document{ID: "doc-1", Body: "old", CreatedAt: base}))
		require.NoError(t, s.Put(ctx, Document{ID: "doc-1", Body: "new", CreatedAt: base}))

		got, err := s.Get(ctx, "doc-1")
		require.NoError(t, err)
		assert.Equal(t, "new", got.Body)

		count, err := s.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("list is ordered by creation time", func(t *testing.T) {
		s := newStore(t)
		base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		for i := 0; i < 5; i++ {
			require.NoError(t, s.Put(ctx, Document{
				ID:        fmt.Sprintf("doc-%d", i),
				Body:      "{}",
				CreatedAt: base.Add(time.Duration(4-i) * time.Minute),
			}))
		}

		docs, err := s.List(ctx, 0, 0)
		require.NoError(t, err)
		require.Len(t, docs, 5)
		assert.Equal(t, "doc-4", docs[0].ID)
		assert.Equal(t, "doc-0", docs[4].ID)
	})

	t.Run("list with limit and offset", func(t *testing.T) {
		s := newStore(t)
		base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		for i := 0; i < 5; i++ {
			require.NoError(t, s.Put(ctx, Document{
				ID:        fmt.Sprintf("doc-%d", i),
				Body:      "{}",
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}))
		}

		docs, err := s.List(ctx, 2, 1)
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "doc-1", docs[0].ID)
		assert.Equal(t, "doc-2", docs[1].ID)

		docs, err = s.List(ctx, 10, 99)
		require.NoError(t, err)
		assert.Empty(t, docs)
	})
}

func TestMemoryStore(t *testing.T) {
	storeUnderTest(t, func(t *testing.T) DocumentStore {
		return NewMemoryStore()
	})
}

func TestSQLiteStore(t *testing.T) {
	storeUnderTest(t, func(t *testing.T) DocumentStore {
		s, err := NewSQLiteStore(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		return s
	})
}

func TestSQLiteStorePing(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer s.Close()
	assert.NoError(t, s.Ping(context.Background()))
}
