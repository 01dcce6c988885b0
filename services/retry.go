package services

import (
	"context"
	"time"
)

// Retry runs fn up to attempts times with doubling delay between tries,
// stopping early when the context is done. Used for push sends, where a
// transient transport error is worth one or two more tries but not a queue.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
