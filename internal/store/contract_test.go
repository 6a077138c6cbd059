package store_test

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/serroba/shortn/internal/shortener"
	"github.com/serroba/shortn/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{6}$`)

// newStoreFunc builds an empty, provisioned store using opts.
type newStoreFunc func(t *testing.T, opts store.Options) shortener.Store

func nanoidOptions(t *testing.T) store.Options {
	t.Helper()

	gen, err := shortener.NewIDGenerator(shortener.IDLength)
	require.NoError(t, err)

	return store.Options{NewID: gen, IDLength: shortener.IDLength}
}

// sequenceGenerator returns distinct six-character IDs in order.
func sequenceGenerator(prefix string) shortener.IDGenerator {
	var n atomic.Int64

	return func() string {
		return fmt.Sprintf("%s%05d", prefix, n.Add(1))
	}
}

// fixedGenerator returns ids in order, repeating the last one once exhausted.
func fixedGenerator(ids ...string) shortener.IDGenerator {
	var mu sync.Mutex

	i := 0

	return func() string {
		mu.Lock()
		defer mu.Unlock()

		id := ids[i]
		if i < len(ids)-1 {
			i++
		}

		return id
	}
}

func runStoreContract(t *testing.T, newStore newStoreFunc) {
	t.Helper()

	ctx := context.Background()

	t.Run("ensure schema is idempotent", func(t *testing.T) {
		s := newStore(t, nanoidOptions(t))

		require.NoError(t, s.EnsureSchema(ctx))
		require.NoError(t, s.EnsureSchema(ctx))
	})

	t.Run("put returns a six character url-safe id", func(t *testing.T) {
		s := newStore(t, nanoidOptions(t))

		id, err := s.Put(ctx, "https://example.com/a")

		require.NoError(t, err)
		assert.Regexp(t, idPattern, string(id))
	})

	t.Run("get returns the url stored by put", func(t *testing.T) {
		s := newStore(t, nanoidOptions(t))

		id, err := s.Put(ctx, "https://example.com/a")
		require.NoError(t, err)

		url, err := s.Get(ctx, id)

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/a", url)
	})

	t.Run("urls are stored verbatim", func(t *testing.T) {
		s := newStore(t, nanoidOptions(t))

		for _, raw := range []string{"not a url", "HTTPS://Example.com/Path/", "https://x?q=1&r=2#frag"} {
			id, err := s.Put(ctx, raw)
			require.NoError(t, err)

			url, err := s.Get(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, raw, url)
		}
	})

	t.Run("re-shortening replaces the previous id", func(t *testing.T) {
		opts := nanoidOptions(t)
		opts.NewID = fixedGenerator("first1", "secnd2")
		s := newStore(t, opts)

		id1, err := s.Put(ctx, "https://example.com/a")
		require.NoError(t, err)

		id2, err := s.Put(ctx, "https://example.com/a")
		require.NoError(t, err)

		assert.Equal(t, shortener.ID("first1"), id1)
		assert.Equal(t, shortener.ID("secnd2"), id2)

		_, err = s.Get(ctx, id1)
		require.ErrorIs(t, err, shortener.ErrNotFound)

		url, err := s.Get(ctx, id2)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/a", url)
	})

	t.Run("regenerating the same id for the same url is accepted", func(t *testing.T) {
		opts := nanoidOptions(t)
		opts.NewID = fixedGenerator("same01")
		s := newStore(t, opts)

		id1, err := s.Put(ctx, "https://example.com/same")
		require.NoError(t, err)

		id2, err := s.Put(ctx, "https://example.com/same")
		require.NoError(t, err)

		assert.Equal(t, id1, id2)

		url, err := s.Get(ctx, id2)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/same", url)
	})

	t.Run("distinct urls get distinct ids", func(t *testing.T) {
		s := newStore(t, nanoidOptions(t))

		idA, err := s.Put(ctx, "https://example.com/a")
		require.NoError(t, err)

		idB, err := s.Put(ctx, "https://example.com/b")
		require.NoError(t, err)

		assert.NotEqual(t, idA, idB)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		s := newStore(t, nanoidOptions(t))

		url, err := s.Get(ctx, "ABCDEF")

		assert.Empty(t, url)
		require.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("id collision is a write failure without retries", func(t *testing.T) {
		opts := nanoidOptions(t)
		opts.NewID = fixedGenerator("dupe01")
		s := newStore(t, opts)

		_, err := s.Put(ctx, "https://example.com/a")
		require.NoError(t, err)

		_, err = s.Put(ctx, "https://example.com/b")

		require.ErrorIs(t, err, shortener.ErrWriteFailure)
		require.ErrorIs(t, err, shortener.ErrIDCollision)

		url, err := s.Get(ctx, "dupe01")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/a", url, "existing link must be untouched")
	})

	t.Run("id collision is retried when configured", func(t *testing.T) {
		opts := nanoidOptions(t)
		opts.NewID = fixedGenerator("dupe01", "dupe01", "fresh1")
		opts.IDRetries = 2
		s := newStore(t, opts)

		_, err := s.Put(ctx, "https://example.com/a")
		require.NoError(t, err)

		id, err := s.Put(ctx, "https://example.com/b")

		require.NoError(t, err)
		assert.Equal(t, shortener.ID("fresh1"), id)
	})

	t.Run("concurrent puts of the same url leave one valid id", func(t *testing.T) {
		opts := nanoidOptions(t)
		opts.NewID = sequenceGenerator("c")
		s := newStore(t, opts)

		const workers = 16

		ids := make([]shortener.ID, workers)

		var wg sync.WaitGroup

		for i := 0; i < workers; i++ {
			i := i

			wg.Add(1)

			go func() {
				defer wg.Done()

				id, err := s.Put(ctx, "https://example.com/race")
				assert.NoError(t, err)

				ids[i] = id
			}()
		}

		wg.Wait()

		valid := 0

		for _, id := range ids {
			url, err := s.Get(ctx, id)
			if err == nil {
				valid++

				assert.Equal(t, "https://example.com/race", url)

				continue
			}

			assert.ErrorIs(t, err, shortener.ErrNotFound)
		}

		assert.Equal(t, 1, valid, "exactly one returned id must still resolve")
	})
}
