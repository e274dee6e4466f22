package kvstore

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseStore runs the behaviour every Store implementation must share.
func exerciseStore(t *testing.T, s Store, key string) {
	ctx := context.Background()

	_, found, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, key, []byte(`{"a":1}`)))
	val, found, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"a":1}`, string(val))

	err = s.Update(ctx, key, func(current []byte, found bool) ([]byte, error) {
		assert.True(t, found)
		assert.JSONEq(t, `{"a":1}`, string(current))
		return []byte(`{"a":2}`), nil
	})
	require.NoError(t, err)
	val, _, _ = s.Get(ctx, key)
	assert.JSONEq(t, `{"a":2}`, string(val))

	boom := errors.New("boom")
	err = s.Update(ctx, key, func(current []byte, found bool) ([]byte, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	val, _, _ = s.Get(ctx, key)
	assert.JSONEq(t, `{"a":2}`, string(val))

	require.NoError(t, s.Delete(ctx, key))
	_, found, err = s.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)
}

// exerciseConcurrentUpdates checks that no increment is lost under contention.
func exerciseConcurrentUpdates(t *testing.T, s Store, key string) {
	ctx := context.Background()
	const writers = 4
	const perWriter = 5

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				for {
					err := s.Update(ctx, key, func(current []byte, found bool) ([]byte, error) {
						n := 0
						if found {
							n, _ = strconv.Atoi(string(current))
						}
						return []byte(strconv.Itoa(n + 1)), nil
					})
					if errors.Is(err, ErrConflict) {
						continue
					}
					assert.NoError(t, err)
					break
				}
			}
		}()
	}
	wg.Wait()

	val, found, err := s.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, strconv.Itoa(writers*perWriter), string(val))
	require.NoError(t, s.Delete(ctx, key))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(), "hiddenCitations_donor-1")
}

func TestMemoryStoreConcurrentUpdates(t *testing.T) {
	exerciseConcurrentUpdates(t, NewMemoryStore(), "counter")
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	in := []byte(`["https://a.example"]`)
	require.NoError(t, s.Set(ctx, "k", in))
	in[0] = 'X'

	out, _, _ := s.Get(ctx, "k")
	assert.Equal(t, byte('['), out[0])
	out[0] = 'Y'

	again, _, _ := s.Get(ctx, "k")
	assert.Equal(t, byte('['), again[0])
}
