package fontload

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"

	"git.home.luguber.info/inful/fontsweep/internal/fontref"
)

// RetryingLoader wraps a Loader with bounded retries for transient
// load failures. Attempts counts total tries including the first.
type RetryingLoader struct {
	Inner    Loader
	Attempts uint
	Delay    time.Duration
}

// NewRetryingLoader applies the default 3 attempts / 100ms base delay.
func NewRetryingLoader(inner Loader) *RetryingLoader {
	return &RetryingLoader{Inner: inner, Attempts: 3, Delay: 100 * time.Millisecond}
}

func (l *RetryingLoader) LoadFont(ctx context.Context, font fontref.FontRef) error {
	attempts := l.Attempts
	if attempts == 0 {
		attempts = 1
	}
	return retry.Do(
		func() error { return l.Inner.LoadFont(ctx, font) },
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(l.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}
