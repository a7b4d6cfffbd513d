package reconciler

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyedMutex_SerializesPerKey(t *testing.T) {
	var km keyedMutex
	var mu sync.Mutex
	counters := map[string]int{}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for _, key := range []string{"a", "b"} {
			wg.Add(1)
			go func(key string) {
				defer wg.Done()
				unlock := km.Lock(key)
				defer unlock()
				mu.Lock()
				counters[key]++
				mu.Unlock()
			}(key)
		}
	}
	wg.Wait()

	require.Equal(t, 50, counters["a"])
	require.Equal(t, 50, counters["b"])
}

func TestKeyedMutex_EntriesAreReleased(t *testing.T) {
	var km keyedMutex

	unlock := km.Lock("key")
	km.mu.Lock()
	require.Len(t, km.entries, 1)
	km.mu.Unlock()

	unlock()
	km.mu.Lock()
	require.Empty(t, km.entries)
	km.mu.Unlock()
}
