// Package replace implements the font replacement engine: a
// single-pass state machine that loads every font a mapping set
// needs, re-walks the scope and rewrites matching character ranges in
// chunked batches.
package replace

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/fontsweep/internal/doctree"
	"git.home.luguber.info/inful/fontsweep/internal/fontload"
	"git.home.luguber.info/inful/fontsweep/internal/fontref"
	"git.home.luguber.info/inful/fontsweep/internal/fontscan"
	"git.home.luguber.info/inful/fontsweep/internal/metrics"
	"git.home.luguber.info/inful/fontsweep/internal/observability"
)

// State names the engine's phase during a replace call.
type State string

const (
	StateIdle         State = "idle"
	StateLoadingFonts State = "loading-fonts"
	StateTraversing   State = "traversing"
	StateCompleted    State = "completed"
	StateFailed       State = "failed"
)

// Engine performs bulk, style-range-accurate font replacement over a
// host document. It holds no document state between calls; every
// Replace re-walks the live tree.
type Engine struct {
	host     doctree.Host
	loader   fontload.Loader
	recorder metrics.Recorder

	batchSize  int
	yield      YieldFunc
	onProgress ProgressFunc

	mu    sync.Mutex
	state State
}

// Option configures an Engine.
type Option func(*Engine)

// WithBatchSize overrides the traversal chunk size.
func WithBatchSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithRecorder injects a metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.recorder = r
		}
	}
}

// WithYield injects the cooperative-yield seam.
func WithYield(y YieldFunc) Option {
	return func(e *Engine) {
		if y != nil {
			e.yield = y
		}
	}
}

// WithProgress injects the progress notification sink.
func WithProgress(p ProgressFunc) Option {
	return func(e *Engine) { e.onProgress = p }
}

// NewEngine creates an engine over the given host and font loader.
func NewEngine(host doctree.Host, loader fontload.Loader, opts ...Option) *Engine {
	e := &Engine{
		host:      host,
		loader:    loader,
		recorder:  metrics.NoopRecorder{},
		batchSize: DefaultBatchSize,
		yield:     defaultYield,
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State reports the engine's current phase.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Replace rewrites every character range in scope whose resolved font
// matches a mapping's old font. The call is not atomic across the
// scope: per-element failures are recorded and skipped, and mutations
// already applied persist if the traversal stops early. A fresh scan
// is the only verification mechanism.
func (e *Engine) Replace(ctx context.Context, scope doctree.Scope, mappings []Mapping) Result {
	opID := uuid.NewString()
	ctx = observability.WithOperationID(ctx, opID)
	ctx = observability.WithScope(ctx, string(scope))
	start := time.Now()

	result := e.replace(ctx, opID, scope, mappings)

	e.recorder.ObserveReplaceDuration(string(scope), time.Since(start))
	e.recorder.IncReplaceOutcome(outcomeLabel(result))
	e.recorder.AddRangesReplaced(result.ReplacedCount)
	if result.Success {
		e.setState(StateCompleted)
	} else {
		e.setState(StateFailed)
	}
	observability.InfoContext(ctx, "replace finished",
		slog.Bool("success", result.Success),
		slog.Int("replaced", result.ReplacedCount),
		slog.Int("errors", len(result.Errors)))
	return result
}

func (e *Engine) replace(ctx context.Context, opID string, scope doctree.Scope, mappings []Mapping) Result {
	if len(mappings) == 0 {
		return finishResult(0, nil)
	}

	e.setState(StateLoadingFonts)
	lookup, errs, failed := e.loadMappingFonts(ctx, mappings)
	if failed {
		// A target font that cannot load would leave the document
		// referencing an unloadable font; nothing is mutated.
		return Result{Success: false, ReplacedCount: 0, Errors: errs}
	}

	e.setState(StateTraversing)
	roots, err := doctree.ResolveScope(e.host, scope)
	if err != nil {
		errs = append(errs, fmt.Sprintf("failed to resolve scope %q: %v", scope, err))
		return Result{Success: false, ReplacedCount: 0, Errors: errs}
	}
	elements := doctree.CollectTextElements(roots)

	replaced := 0
	batcher := Batcher{
		Size:        e.batchSize,
		Yield:       e.yield,
		OnProgress:  e.onProgress,
		OperationID: opID,
		Recorder:    e.recorder,
	}
	processed, yieldErr := batcher.Run(ctx, len(elements), func(i int) {
		n, elErrs := rewriteElement(elements[i], lookup)
		replaced += n
		errs = append(errs, elErrs...)
	})
	if yieldErr != nil {
		errs = append(errs, fmt.Sprintf("traversal stopped after %d of %d elements: %v", processed, len(elements), yieldErr))
	}

	return finishResult(replaced, errs)
}

// loadMappingFonts loads the union of all source and target fonts in
// parallel. Target failures are fatal to the operation; source
// failures only forfeit their mappings.
func (e *Engine) loadMappingFonts(ctx context.Context, mappings []Mapping) (map[string]fontref.FontRef, []string, bool) {
	fonts := make([]fontref.FontRef, 0, len(mappings)*2)
	for _, m := range mappings {
		fonts = append(fonts, m.Old, m.New)
	}
	batch := fontload.LoadAll(ctx, e.loader, fonts)
	for _, f := range fonts {
		e.recorder.IncFontLoadResult(!batch.FailedFor(f))
	}

	var errs []string
	failed := false
	for _, m := range mappings {
		if err := batch.Failed[m.New.Key()]; err != nil {
			errs = append(errs, fmt.Sprintf("failed to load target font %s: %v", m.New, err))
			failed = true
		}
	}
	if failed {
		return nil, errs, true
	}

	lookup := make(map[string]fontref.FontRef, len(mappings))
	for _, m := range mappings {
		if err := batch.Failed[m.Old.Key()]; err != nil {
			// Tolerated: ranges using this source keep their font.
			observability.WarnContext(ctx, "skipping mapping with unloadable source font",
				slog.String("font", m.Old.String()),
				slog.String("error", err.Error()))
			continue
		}
		lookup[m.Old.Key()] = m.New
	}
	return lookup, errs, false
}

// rewriteElement rewrites the element's matching ranges in descending
// start-offset order, so hosts that shift content offsets on mutation
// cannot invalidate ranges not yet processed.
func rewriteElement(el doctree.TextElement, lookup map[string]fontref.FontRef) (int, []string) {
	ranges, err := fontscan.ExtractRanges(el)
	if err != nil {
		return 0, []string{fmt.Sprintf("failed to read element %q: %v", el.Name(), err)}
	}

	replaced := 0
	var errs []string
	for i := len(ranges) - 1; i >= 0; i-- {
		r := ranges[i]
		target, ok := lookup[r.Font.Key()]
		if !ok {
			continue
		}
		if err := el.SetRangeFont(r.Start, r.End, target); err != nil {
			errs = append(errs, fmt.Sprintf("element %q: failed to rewrite range [%d,%d): %v", el.Name(), r.Start, r.End, err))
			continue
		}
		replaced++
	}
	return replaced, errs
}
