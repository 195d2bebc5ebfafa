// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package rfc

import "sync"

// waiter is the single-shot continuation pair stored per in-flight call.
// Exactly one of resolve/reject is invoked, exactly once.
type waiter struct {
	resolve func(any)
	reject  func(error)
}

// pendingTable is the Communicator's private map from call uid to waiter,
// C3 of the design. It must be treated as single-writer; all access is
// behind mu so Communicators used from multiple goroutines stay correct.
type pendingTable struct {
	mu      sync.Mutex
	waiters map[uint64]waiter
}

func newPendingTable() *pendingTable {
	return &pendingTable{waiters: make(map[uint64]waiter)}
}

// insert records the continuation pair for uid. uids are freshly minted
// by the sequence counter, so a collision here would indicate a counter
// bug, not a legitimate duplicate call.
func (t *pendingTable) insert(uid uint64, resolve func(any), reject func(error)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.waiters[uid] = waiter{resolve: resolve, reject: reject}
}

// take removes and returns the waiter for uid, if any. It is destructive:
// a second take for the same uid returns ok=false, which is how a late or
// duplicate return is dropped silently.
func (t *pendingTable) take(uid uint64) (waiter, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	w, ok := t.waiters[uid]
	if ok {
		delete(t.waiters, uid)
	}
	return w, ok
}

// clear empties the table, rejecting every stored waiter with err exactly
// once, as the Communicator's destructor requires.
func (t *pendingTable) clear(err error) {
	t.mu.Lock()
	waiters := t.waiters
	t.waiters = make(map[uint64]waiter)
	t.mu.Unlock()

	for _, w := range waiters {
		w.reject(err)
	}
}

// len reports the number of calls currently outstanding. It is used by
// tests; the core itself enforces no bound.
func (t *pendingTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.waiters)
}
