package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when a remote backend cannot be reached.
// Callers treat it as a miss and carry on without the cache.
var ErrUnavailable = errors.New("cache backend unavailable")

// retryUnavailable runs fn up to attempts times while it fails with
// [ErrUnavailable], doubling delay between tries. Any other error, or a
// cancelled ctx, ends the loop early.
func retryUnavailable(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	err := fn()
	for try := 1; try < attempts && errors.Is(err, ErrUnavailable); try++ {
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
		err = fn()
	}
	return err
}
