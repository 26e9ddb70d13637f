package cache

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintSources(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.csv")
	b := filepath.Join(dir, "b.csv")
	require.NoError(t, os.WriteFile(a, []byte("one"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("two"), 0o644))

	fp1 := FingerprintSources(a, b)
	// Argument order must not matter.
	assert.Equal(t, fp1, FingerprintSources(b, a))

	// Replacing a file changes the fingerprint.
	require.NoError(t, os.WriteFile(a, []byte("one-changed"), 0o644))
	assert.NotEqual(t, fp1, FingerprintSources(a, b))

	// A missing file still yields a stable, distinct fingerprint.
	missing := FingerprintSources(filepath.Join(dir, "nope.csv"))
	assert.Equal(t, missing, FingerprintSources(filepath.Join(dir, "nope.csv")))
	assert.NotEqual(t, fp1, missing)
}

func TestStoreGetOrCompute(t *testing.T) {
	store := NewStore[int](nil)
	calls := 0

	v, hit, err := store.GetOrCompute("fp-1", func() (int, error) {
		calls++
		return 42, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 42, v)

	v, hit, err = store.GetOrCompute("fp-1", func() (int, error) {
		calls++
		return 0, nil
	})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, calls)
}

func TestStoreComputeError(t *testing.T) {
	store := NewStore[int](nil)
	wantErr := errors.New("boom")

	_, _, err := store.GetOrCompute("fp", func() (int, error) { return 0, wantErr })
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 0, store.Len())

	// Errors are not cached; the next call recomputes.
	v, _, err := store.GetOrCompute("fp", func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestStoreNewFingerprintInvalidates(t *testing.T) {
	store := NewStore[string](nil)
	invalidated := int32(0)
	store.OnInvalidate(func() { atomic.AddInt32(&invalidated, 1) })

	_, _, err := store.GetOrCompute("fp-old", func() (string, error) { return "old", nil })
	require.NoError(t, err)

	_, _, err = store.GetOrCompute("fp-new", func() (string, error) { return "new", nil })
	require.NoError(t, err)

	assert.Equal(t, 1, store.Len())
	assert.Equal(t, int32(1), atomic.LoadInt32(&invalidated))

	// The old fingerprint is gone.
	calls := 0
	_, hit, err := store.GetOrCompute("fp-new", func() (string, error) {
		calls++
		return "", nil
	})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 0, calls)
}

func TestStoreSingleflight(t *testing.T) {
	store := NewStore[int](nil)
	var calls int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _, err := store.GetOrCompute("fp", func() (int, error) {
				atomic.AddInt32(&calls, 1)
				<-release
				return 99, nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 99, v)
		}()
	}

	// Let every goroutine reach the cache before releasing the compute.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
