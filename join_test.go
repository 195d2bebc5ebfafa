// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package rfc

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJoinCoordinatorWaitReleasesOnNotify(t *testing.T) {
	j := newJoinCoordinator()
	var wg sync.WaitGroup
	n := 8
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			j.wait()
		}()
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()

	select {
	case <-done:
		t.Fatal("waiters returned before notifyAll")
	case <-time.After(20 * time.Millisecond):
	}

	j.notifyAll()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiters did not release after notifyAll")
	}
}

func TestJoinCoordinatorWaitForTimesOut(t *testing.T) {
	j := newJoinCoordinator()
	woke := j.waitFor(10 * time.Millisecond)
	require.False(t, woke)
}

func TestJoinCoordinatorWaitForResolvesTrueOnNotify(t *testing.T) {
	j := newJoinCoordinator()
	go func() {
		time.Sleep(5 * time.Millisecond)
		j.notifyAll()
	}()
	woke := j.waitFor(time.Second)
	require.True(t, woke)
}

func TestJoinCoordinatorNotifyAllIsIdempotent(t *testing.T) {
	j := newJoinCoordinator()
	require.NotPanics(t, func() {
		j.notifyAll()
		j.notifyAll()
	})
	require.True(t, j.waitFor(50*time.Millisecond))
}
