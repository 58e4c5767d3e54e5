package operator_test

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamfabric/corert/internal/core/channel"
	"github.com/streamfabric/corert/internal/core/operator"
)

func TestQueueFIFOSingleReader(t *testing.T) {
	q := operator.NewQueue[int](4)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.Equal(t, channel.Success, q.AwaitWrite(ctx, i))
	}
	q.Close()

	var got []int
	for {
		v, status := q.AwaitRead(ctx)
		if status == channel.Closed {
			break
		}
		require.Equal(t, channel.Success, status)
		got = append(got, v)
	}
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestQueueWorkStealingEachValueToExactlyOneReader(t *testing.T) {
	const values = 100
	q := operator.NewQueue[int](8)
	ctx := context.Background()

	var mu sync.Mutex
	var got []int
	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				v, status := q.AwaitRead(ctx)
				if status != channel.Success {
					return
				}
				mu.Lock()
				got = append(got, v)
				mu.Unlock()
			}
		}()
	}

	for i := 0; i < values; i++ {
		require.Equal(t, channel.Success, q.AwaitWrite(ctx, i))
	}
	q.Close()
	wg.Wait()

	// Work-stealing: unspecified which reader got which value, but the
	// multiset across all readers is exactly the written sequence.
	sort.Ints(got)
	require.Len(t, got, values)
	for i, v := range got {
		assert.Equal(t, i, v)
	}
}
