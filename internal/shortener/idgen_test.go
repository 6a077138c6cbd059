package shortener_test

import (
	"regexp"
	"testing"

	"github.com/serroba/shortn/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDGenerator(t *testing.T) {
	t.Run("generates url-safe ids of the requested length", func(t *testing.T) {
		gen, err := shortener.NewIDGenerator(shortener.IDLength)
		require.NoError(t, err)

		pattern := regexp.MustCompile(`^[A-Za-z0-9_-]{6}$`)

		for i := 0; i < 100; i++ {
			assert.Regexp(t, pattern, gen())
		}
	})

	t.Run("ids do not repeat in practice", func(t *testing.T) {
		gen, err := shortener.NewIDGenerator(shortener.IDLength)
		require.NoError(t, err)

		seen := make(map[string]struct{})

		for i := 0; i < 1000; i++ {
			seen[gen()] = struct{}{}
		}

		assert.Len(t, seen, 1000)
	})

	t.Run("rejects an invalid length", func(t *testing.T) {
		gen, err := shortener.NewIDGenerator(0)

		assert.Nil(t, gen)
		assert.Error(t, err)
	})
}
