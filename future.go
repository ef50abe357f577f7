package go_wish

import (
	"context"
	"fmt"
)

// Future is the result of a call started with Go.
type Future[T any] struct {
	val  T
	err  error
	done chan struct{}
}

// Go runs fn in its own goroutine and returns a Future for its result.
//
// A panic inside fn is turned into the Future's error so the Future always
// completes.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				f.err = fmt.Errorf("wish call panicked: %v", r)
			}
		}()
		f.val, f.err = fn(ctx)
	}()
	return f
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Wait blocks until the call completes or ctx is done. Giving up on Wait does
// not cancel the call; cancel the context passed to Go for that.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then calls cb with the result once it is available. cb runs on its own goroutine.
func (f *Future[T]) Then(cb func(T, error)) {
	if cb == nil {
		return
	}
	go func() {
		<-f.done
		cb(f.val, f.err)
	}()
}

// Callback runs fn in the background and reports its result to cb, for
// callers that prefer completion callbacks:
//
//	go_wish.Callback(ctx, func(ctx context.Context) (*go_wish.Merchant, error) {
//		return client.AuthTest(ctx)
//	}, func(m *go_wish.Merchant, err error) {
//		// handle result
//	})
func Callback[T any](ctx context.Context, fn func(context.Context) (T, error), cb func(T, error)) *Future[T] {
	f := Go(ctx, fn)
	f.Then(cb)
	return f
}
