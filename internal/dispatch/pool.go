// Package dispatch bridges providers into request handling: a bounded
// offload pool for blocking backends and the single-invocation provider
// call used by every framework.
package dispatch

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// Pool is a bounded worker pool for blocking provider calls. Each Do call
// runs its function on a dedicated goroutine after acquiring one of the
// pool's slots, so a slow synchronous backend consumes at most one slot
// instead of a handler goroutine per in-flight request without limit.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool creates a pool with the given number of slots.
// Size values below 1 fall back to 4x GOMAXPROCS.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 4 * runtime.GOMAXPROCS(0)
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size))}
}

// Do runs fn on a pool slot and returns its result. The context bounds slot
// acquisition only; once fn starts it runs to completion or failure, there
// is no cancellation propagation into the backend call.
func (p *Pool) Do(ctx context.Context, fn func() (string, error)) (string, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		defer p.sem.Release(1)
		defer func() {
			// A panic on a pool goroutine would kill the process;
			// surface it as an error for the caller's shim instead.
			if r := recover(); r != nil {
				done <- outcome{err: fmt.Errorf("%v", r)}
			}
		}()
		text, err := fn()
		done <- outcome{text, err}
	}()

	out := <-done
	return out.text, out.err
}

var defaultPool = NewPool(0)

// Offload runs a blocking generation call on the shared bounded pool.
// Providers that wrap synchronous clients call this from their own Generate
// so the dispatcher never has to branch on calling convention.
func Offload(ctx context.Context, fn func() (string, error)) (string, error) {
	return defaultPool.Do(ctx, fn)
}
