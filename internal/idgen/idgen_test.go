package idgen

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MonotonicInProcess(t *testing.T) {
	prev := New()
	for i := 0; i < 10000; i++ {
		next := New()
		require.Equal(t, 1, Compare(next, prev), "id %d went backwards", i)
		prev = next
	}
}

func TestNew_UniqueAcrossGoroutines(t *testing.T) {
	const workers = 16
	const perWorker = 2000

	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*perWorker)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				local = append(local, New())
			}
			mu.Lock()
			for _, id := range local {
				seen[id] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}

func TestTime_RoundsToCreation(t *testing.T) {
	before := time.Now().Truncate(time.Millisecond)
	id := New()
	after := time.Now()

	ts, err := Time(id)
	require.NoError(t, err)
	assert.False(t, ts.Before(before))
	assert.False(t, ts.After(after))
}

func TestTime_RejectsOtherIDs(t *testing.T) {
	_, err := Time("not-a-uuid")
	assert.Error(t, err)

	_, err = Time("6ba7b810-9dad-41d1-80b4-00c04fd430c8")
	assert.ErrorIs(t, err, ErrNotTimeOrdered)
}

func TestCompare_SortsByCreation(t *testing.T) {
	ids := make([]string, 50)
	for i := range ids {
		ids[i] = New()
	}
	shuffled := append([]string(nil), ids...)
	sort.Sort(sort.Reverse(sort.StringSlice(shuffled)))
	sort.Slice(shuffled, func(i, j int) bool { return Compare(shuffled[i], shuffled[j]) < 0 })

	assert.Equal(t, ids, shuffled)
}
