// Package fontload models the host's asynchronous font-loading
// capability as an injected interface, making the "load before
// mutate" invariant of the replacement engine testable with fakes.
package fontload

import (
	"context"
	"sync"

	"git.home.luguber.info/inful/fontsweep/internal/fontref"
)

// Loader makes fonts available for assignment. Implementations must be
// safe for concurrent use; a load failure applies to that font only.
type Loader interface {
	LoadFont(ctx context.Context, font fontref.FontRef) error
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, font fontref.FontRef) error

func (f LoaderFunc) LoadFont(ctx context.Context, font fontref.FontRef) error {
	return f(ctx, font)
}

// BatchResult reports the outcome of a parallel batch load.
type BatchResult struct {
	// Failed maps FontRef keys to their load errors.
	Failed map[string]error
}

// FailedFor reports whether the given font failed to load.
func (r BatchResult) FailedFor(font fontref.FontRef) bool {
	_, ok := r.Failed[font.Key()]
	return ok
}

// LoadAll issues one load per distinct font, all in parallel, and
// waits for every request to settle. Load latency therefore does not
// scale with the number of fonts. Individual failures are collected,
// never short-circuiting the rest of the batch.
func LoadAll(ctx context.Context, loader Loader, fonts []fontref.FontRef) BatchResult {
	distinct := make(map[string]fontref.FontRef, len(fonts))
	for _, f := range fonts {
		distinct[f.Key()] = f
	}

	result := BatchResult{Failed: make(map[string]error)}
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for key, font := range distinct {
		wg.Add(1)
		go func(key string, font fontref.FontRef) {
			defer wg.Done()
			if err := loader.LoadFont(ctx, font); err != nil {
				mu.Lock()
				result.Failed[key] = err
				mu.Unlock()
			}
		}(key, font)
	}
	wg.Wait()
	return result
}
