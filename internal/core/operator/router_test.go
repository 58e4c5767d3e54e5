package operator_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamfabric/corert/internal/core/channel"
	"github.com/streamfabric/corert/internal/core/edge"
	"github.com/streamfabric/corert/internal/core/operator"
)

func newTestRouter[K comparable](onUnknown operator.UnknownKeyPolicy[K, int], extract operator.KeyFunc[K, int]) *operator.Router[K, int] {
	return operator.NewRouter(extract, onUnknown, zerolog.Nop(), func() (edge.WritableHalf[int], edge.ReadableHalf[int]) {
		ce := edge.NewChannelEdge[int](channel.NewBuffered[int](8, 0))
		return ce, ce
	})
}

func TestRouterOddEven(t *testing.T) {
	r := newTestRouter(nil, func(v int) string {
		if v%2 == 0 {
			return "even"
		}
		return "odd"
	})

	evenSrc := r.GetSource("even")
	oddSrc := r.GetSource("odd")

	ctx := context.Background()
	for _, v := range []int{0, 1, 2} {
		require.Equal(t, channel.Success, r.AwaitWrite(ctx, v))
	}

	v, status := oddSrc.AwaitRead(ctx)
	require.Equal(t, channel.Success, status)
	assert.Equal(t, 1, v)

	for _, want := range []int{0, 2} {
		v, status := evenSrc.AwaitRead(ctx)
		require.Equal(t, channel.Success, status)
		assert.Equal(t, want, v)
	}
}

func TestRouterGetSourceIdempotent(t *testing.T) {
	r := newTestRouter(nil, func(v int) int { return v % 3 })
	first := r.GetSource(1)
	second := r.GetSource(1)
	assert.Same(t, first, second)
}

func TestRouterUnknownKeyDroppedStreamContinues(t *testing.T) {
	var dropped []int
	policy := func(log zerolog.Logger, key string, value int) {
		operator.DropWithWarning(log, key, value)
		dropped = append(dropped, value)
	}
	r := newTestRouter[string](policy, func(v int) string {
		if v%2 == 0 {
			return "even"
		}
		return "odd"
	})
	evenSrc := r.GetSource("even")

	ctx := context.Background()
	// "odd" has no sink yet: 1 is dropped, the stream keeps flowing.
	for _, v := range []int{0, 1, 2} {
		require.Equal(t, channel.Success, r.AwaitWrite(ctx, v))
	}
	assert.Equal(t, []int{1}, dropped)

	for _, want := range []int{0, 2} {
		v, status := evenSrc.AwaitRead(ctx)
		require.Equal(t, channel.Success, status)
		assert.Equal(t, want, v)
	}
}
