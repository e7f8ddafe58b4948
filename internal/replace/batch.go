package replace

import (
	"context"
	"math"

	"git.home.luguber.info/inful/fontsweep/internal/metrics"
)

// DefaultBatchSize bounds how many elements are processed before the
// engine yields control back to the scheduler.
const DefaultBatchSize = 50

// Progress is the chunk-yield notification emitted after each batch.
type Progress struct {
	OperationID string `json:"operationId"`
	Processed   int    `json:"processed"`
	Total       int    `json:"total"`
	// Percent is round(processed/total*100).
	Percent int `json:"progress"`
}

// ProgressFunc receives progress notifications.
type ProgressFunc func(Progress)

// YieldFunc is the cooperative-yield seam invoked between chunks. The
// default checks for cancellation only; serve mode injects a yield
// that parks on the host scheduler. Returning an error stops the
// traversal.
type YieldFunc func(ctx context.Context) error

func defaultYield(ctx context.Context) error { return ctx.Err() }

// Batcher drives a chunked traversal: fn is called once per index,
// progress is emitted after every chunk (including the final partial
// one), and the yield seam runs between chunks so a single-threaded
// cooperative host stays responsive.
type Batcher struct {
	Size        int
	Yield       YieldFunc
	OnProgress  ProgressFunc
	OperationID string
	Recorder    metrics.Recorder
}

// Run processes indexes [0, total). It returns the number processed
// and the yield error, if any, that stopped the traversal early.
func (b Batcher) Run(ctx context.Context, total int, fn func(index int)) (int, error) {
	size := b.Size
	if size <= 0 {
		size = DefaultBatchSize
	}
	yield := b.Yield
	if yield == nil {
		yield = defaultYield
	}
	recorder := b.Recorder
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	processed := 0
	for processed < total {
		chunkEnd := processed + size
		if chunkEnd > total {
			chunkEnd = total
		}
		for ; processed < chunkEnd; processed++ {
			fn(processed)
		}
		if b.OnProgress != nil {
			b.OnProgress(Progress{
				OperationID: b.OperationID,
				Processed:   processed,
				Total:       total,
				Percent:     percent(processed, total),
			})
		}
		if processed < total {
			recorder.IncChunkYield()
			if err := yield(ctx); err != nil {
				return processed, err
			}
		}
	}
	return processed, nil
}

func percent(processed, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(float64(processed) / float64(total) * 100))
}
