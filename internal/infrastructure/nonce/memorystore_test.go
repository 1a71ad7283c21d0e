package nonce

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CheckAndStore(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts a fresh triple once", func(t *testing.T) {
		store := NewMemoryStore(20 * time.Minute)

		fresh, err := store.CheckAndStore(ctx, "key", "1700000000", "nonce-1")
		require.NoError(t, err)
		assert.True(t, fresh)

		fresh, err = store.CheckAndStore(ctx, "key", "1700000000", "nonce-1")
		require.NoError(t, err)
		assert.False(t, fresh)
	})

	t.Run("triples differing in any component are independent", func(t *testing.T) {
		store := NewMemoryStore(20 * time.Minute)

		_, err := store.CheckAndStore(ctx, "key", "1700000000", "nonce-1")
		require.NoError(t, err)

		for _, triple := range [][3]string{
			{"other-key", "1700000000", "nonce-1"},
			{"key", "1700000001", "nonce-1"},
			{"key", "1700000000", "nonce-2"},
		} {
			fresh, err := store.CheckAndStore(ctx, triple[0], triple[1], triple[2])
			require.NoError(t, err)
			assert.True(t, fresh)
		}
	})

	t.Run("accepts again after the ttl elapsed", func(t *testing.T) {
		store := NewMemoryStore(20 * time.Minute)
		base := time.Unix(1700000000, 0)
		store.now = func() time.Time { return base }

		fresh, err := store.CheckAndStore(ctx, "key", "1700000000", "nonce-1")
		require.NoError(t, err)
		require.True(t, fresh)

		store.now = func() time.Time { return base.Add(21 * time.Minute) }
		fresh, err = store.CheckAndStore(ctx, "key", "1700000000", "nonce-1")
		require.NoError(t, err)
		assert.True(t, fresh)
	})
}
