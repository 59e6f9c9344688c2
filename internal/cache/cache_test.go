package cache

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrLoad(t *testing.T) {
	c := New[int]()
	var calls int

	load := func() (int, error) {
		calls++
		return 42, nil
	}

	v, err := c.GetOrLoad("answer", load)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = c.GetOrLoad("answer", load)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls, "second lookup must hit the cache")
	assert.Equal(t, 1, c.Len())
}

func TestGetOrLoad_ErrorsNotCached(t *testing.T) {
	c := New[string]()
	boom := errors.New("boom")

	_, err := c.GetOrLoad("k", func() (string, error) { return "", boom })
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 0, c.Len())

	v, err := c.GetOrLoad("k", func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestClear(t *testing.T) {
	c := New[int]()
	_, _ = c.GetOrLoad("a", func() (int, error) { return 1, nil })
	_, _ = c.GetOrLoad("b", func() (int, error) { return 2, nil })
	assert.Equal(t, 2, c.Len())

	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestBounded(t *testing.T) {
	c := NewBounded[int](2)
	for i := range 3 {
		key := strconv.Itoa(i)
		_, err := c.GetOrLoad(key, func() (int, error) { return i, nil })
		require.NoError(t, err)
	}
	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("0")
	assert.False(t, ok, "oldest entry should be evicted")

	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestNewBounded_NonPositiveIsUnbounded(t *testing.T) {
	c := NewBounded[int](0)
	for i := range 100 {
		_, _ = c.GetOrLoad(strconv.Itoa(i), func() (int, error) { return i, nil })
	}
	assert.Equal(t, 100, c.Len())
}

func TestConcurrentLoads(t *testing.T) {
	c := New[int]()
	var loads atomic.Int32
	var wg sync.WaitGroup

	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrLoad("shared", func() (int, error) {
				loads.Add(1)
				return 7, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 7, v)
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, loads.Load(), int32(1))
	assert.Equal(t, 1, c.Len())
}
