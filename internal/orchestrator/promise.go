package orchestrator

import (
	"context"
	"sync"

	"github.com/koios/jokeview/internal/eventloop"
)

// Promise is a value that becomes available later. Handlers registered with
// Handle, Then or Chain run on the event loop after the promise settles.
type Promise[T any] struct {
	loop *eventloop.Loop

	mu       sync.Mutex
	settled  bool
	value    T
	err      error
	handlers []func()
	done     chan struct{}
}

// NewPromise returns a pending promise together with its settle function.
// Only the first call to settle has any effect.
func NewPromise[T any](loop *eventloop.Loop) (*Promise[T], func(T, error)) {
	p := &Promise[T]{loop: loop, done: make(chan struct{})}
	return p, p.settle
}

// Rejected returns a promise already rejected with err
func Rejected[T any](loop *eventloop.Loop, err error) *Promise[T] {
	p, settle := NewPromise[T](loop)
	var zero T
	settle(zero, err)
	return p
}

func (p *Promise[T]) settle(v T, err error) {
	p.mu.Lock()
	if p.settled {
		p.mu.Unlock()
		return
	}
	p.settled = true
	p.value, p.err = v, err
	handlers := p.handlers
	p.handlers = nil
	p.mu.Unlock()

	close(p.done)
	// a stopped loop logs and drops the handlers, Await still returns
	for _, h := range handlers {
		_ = p.loop.Post(h)
	}
}

// Handle registers callbacks for fulfilment and rejection. Either may be nil.
func (p *Promise[T]) Handle(onFulfilled func(T), onRejected func(error)) {
	h := func() {
		if p.err != nil {
			if onRejected != nil {
				onRejected(p.err)
			}
			return
		}
		if onFulfilled != nil {
			onFulfilled(p.value)
		}
	}

	p.mu.Lock()
	if !p.settled {
		p.handlers = append(p.handlers, h)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	_ = p.loop.Post(h)
}

// Await blocks until the promise settles or ctx is done
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-p.done:
		return p.value, p.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Then maps the fulfilled value of p. A rejection skips fn and propagates.
func Then[T, U any](p *Promise[T], fn func(T) (U, error)) *Promise[U] {
	next, settle := NewPromise[U](p.loop)
	p.Handle(func(v T) {
		settle(fn(v))
	}, func(err error) {
		var zero U
		settle(zero, err)
	})
	return next
}

// Chain continues p with another asynchronous step
func Chain[T, U any](p *Promise[T], fn func(T) *Promise[U]) *Promise[U] {
	next, settle := NewPromise[U](p.loop)
	p.Handle(func(v T) {
		fn(v).Handle(func(u U) {
			settle(u, nil)
		}, func(err error) {
			var zero U
			settle(zero, err)
		})
	}, func(err error) {
		var zero U
		settle(zero, err)
	})
	return next
}
