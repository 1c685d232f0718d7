// Package deadline races a cancellable operation against a timer.
//
// Run starts op on a context derived from the caller's and arms a timer.
// Whichever settles first decides the outcome. When the timer wins, the
// operation's context is cancelled so in-flight I/O is torn down, and its
// eventual result is dropped into a buffered channel nobody reads, letting
// the goroutine exit on its own.
package deadline

import (
	"context"
	"errors"
	"time"
)

// ErrDeadlineExceeded is returned by Run when the timer fires first.
var ErrDeadlineExceeded = errors.New("deadline exceeded")

type outcome[T any] struct {
	val T
	err error
}

// Run executes op with a hard ceiling of timeout. The returned duration is
// the wall-clock time from dispatch to whichever branch settled.
//
// A non-positive timeout disables the timer; op then runs until it returns
// or ctx is done.
func Run[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) (T, time.Duration, error) {
	var zero T
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return zero, 0, err
	}

	opCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan outcome[T], 1)
	go func() {
		v, err := op(opCtx)
		done <- outcome[T]{val: v, err: err}
	}()

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case o := <-done:
		return o.val, time.Since(start), o.err
	case <-expired:
		cancel()
		return zero, time.Since(start), ErrDeadlineExceeded
	case <-ctx.Done():
		cancel()
		return zero, time.Since(start), ctx.Err()
	}
}
