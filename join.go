// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package rfc

import (
	"context"
	"sync"
	"time"
)

// joinCoordinator is C4: a condition variable awaiting disconnection, with
// timed variants. It is built on a closable channel rather than sync.Cond
// because every waiter needs an independent timeout option.
type joinCoordinator struct {
	mu     sync.Mutex
	notify chan struct{}
}

func newJoinCoordinator() *joinCoordinator {
	return &joinCoordinator{notify: make(chan struct{})}
}

// wait suspends until notifyAll is called.
func (j *joinCoordinator) wait() {
	j.mu.Lock()
	ch := j.notify
	j.mu.Unlock()
	<-ch
}

// waitFor suspends up to d, resolving true if awoken by notifyAll and
// false if the timeout expired first.
func (j *joinCoordinator) waitFor(d time.Duration) bool {
	j.mu.Lock()
	ch := j.notify
	j.mu.Unlock()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	}
}

// waitUntil suspends until the absolute deadline, with the same true/false
// semantics as waitFor.
func (j *joinCoordinator) waitUntil(deadline time.Time) bool {
	return j.waitFor(time.Until(deadline))
}

// waitContext suspends until notifyAll or ctx is done, returning ctx.Err()
// in the latter case. Provided as the idiomatic Go entry point alongside
// the duration/deadline forms.
func (j *joinCoordinator) waitContext(ctx context.Context) error {
	j.mu.Lock()
	ch := j.notify
	j.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// notifyAll releases every current and future waiter. It is idempotent:
// calling it more than once (e.g. a destructor invoked twice) is safe and
// a no-op after the first call.
func (j *joinCoordinator) notifyAll() {
	j.mu.Lock()
	defer j.mu.Unlock()
	select {
	case <-j.notify:
		// already closed
	default:
		close(j.notify)
	}
}
