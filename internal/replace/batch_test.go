package replace

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatcherChunking(t *testing.T) {
	// 130 elements at batch size 50: exactly three notifications.
	var events []Progress
	b := Batcher{
		Size:       50,
		OnProgress: func(p Progress) { events = append(events, p) },
	}

	processed, err := b.Run(context.Background(), 130, func(int) {})
	require.NoError(t, err)
	assert.Equal(t, 130, processed)

	require.Len(t, events, 3)
	assert.Equal(t, []int{50, 100, 130}, []int{events[0].Processed, events[1].Processed, events[2].Processed})
	assert.Equal(t, []int{38, 77, 100}, []int{events[0].Percent, events[1].Percent, events[2].Percent})
	for _, e := range events {
		assert.Equal(t, 130, e.Total)
	}
}

func TestBatcherSingleChunk(t *testing.T) {
	var events []Progress
	b := Batcher{Size: 50, OnProgress: func(p Progress) { events = append(events, p) }}

	processed, err := b.Run(context.Background(), 10, func(int) {})
	require.NoError(t, err)
	assert.Equal(t, 10, processed)
	require.Len(t, events, 1)
	assert.Equal(t, 10, events[0].Processed)
	assert.Equal(t, 100, events[0].Percent)
}

func TestBatcherZeroTotal(t *testing.T) {
	calls := 0
	b := Batcher{Size: 50, OnProgress: func(Progress) { calls++ }}
	processed, err := b.Run(context.Background(), 0, func(int) { t.Fatal("fn must not run") })
	require.NoError(t, err)
	assert.Zero(t, processed)
	assert.Zero(t, calls)
}

func TestBatcherYieldErrorStopsTraversal(t *testing.T) {
	yieldErr := errors.New("host closed")
	b := Batcher{
		Size:  2,
		Yield: func(context.Context) error { return yieldErr },
	}

	var seen []int
	processed, err := b.Run(context.Background(), 5, func(i int) { seen = append(seen, i) })
	assert.ErrorIs(t, err, yieldErr)
	assert.Equal(t, 2, processed)
	assert.Equal(t, []int{0, 1}, seen)
}

func TestBatcherCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := Batcher{Size: 1}
	processed, err := b.Run(ctx, 3, func(int) {})
	assert.Error(t, err)
	assert.Equal(t, 1, processed)
}

func TestPercentRounding(t *testing.T) {
	assert.Equal(t, 38, percent(50, 130))
	assert.Equal(t, 77, percent(100, 130))
	assert.Equal(t, 100, percent(130, 130))
	assert.Equal(t, 100, percent(0, 0))
}
