package fontload

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/fontsweep/internal/fontref"
)

// stubLoader fails the fonts listed in fail and records call counts.
type stubLoader struct {
	mu    sync.Mutex
	fail  map[string]error
	calls map[string]int
}

func newStubLoader() *stubLoader {
	return &stubLoader{fail: map[string]error{}, calls: map[string]int{}}
}

func (s *stubLoader) LoadFont(_ context.Context, font fontref.FontRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[font.Key()]++
	return s.fail[font.Key()]
}

func TestLoadAllCollectsFailuresWithoutAborting(t *testing.T) {
	stub := newStubLoader()
	broken := fontref.New("Broken", "Regular")
	stub.fail[broken.Key()] = errors.New("missing file")

	ok := fontref.New("Roboto", "Bold")
	result := LoadAll(context.Background(), stub, []fontref.FontRef{ok, broken})

	assert.False(t, result.FailedFor(ok))
	assert.True(t, result.FailedFor(broken))
	assert.Len(t, result.Failed, 1)
	assert.Equal(t, 1, stub.calls[ok.Key()])
}

func TestLoadAllDeduplicates(t *testing.T) {
	stub := newStubLoader()
	f := fontref.New("Inter", "Regular")
	result := LoadAll(context.Background(), stub, []fontref.FontRef{f, f, f})
	assert.Empty(t, result.Failed)
	assert.Equal(t, 1, stub.calls[f.Key()])
}

func TestLoadAllEmpty(t *testing.T) {
	result := LoadAll(context.Background(), newStubLoader(), nil)
	assert.Empty(t, result.Failed)
}

func TestRetryingLoaderRecoversFromTransientFailure(t *testing.T) {
	var calls atomic.Int32
	flaky := LoaderFunc(func(_ context.Context, _ fontref.FontRef) error {
		if calls.Add(1) < 3 {
			return errors.New("transient")
		}
		return nil
	})

	loader := &RetryingLoader{Inner: flaky, Attempts: 3, Delay: 1}
	err := loader.LoadFont(context.Background(), fontref.New("Roboto", "Bold"))
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetryingLoaderGivesUp(t *testing.T) {
	var calls atomic.Int32
	dead := LoaderFunc(func(_ context.Context, _ fontref.FontRef) error {
		calls.Add(1)
		return errors.New("permanent")
	})

	loader := &RetryingLoader{Inner: dead, Attempts: 2, Delay: 1}
	err := loader.LoadFont(context.Background(), fontref.New("Roboto", "Bold"))
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}
