// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package rfc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPendingTableInsertTakeIsDestructive(t *testing.T) {
	tbl := newPendingTable()
	var resolved any
	tbl.insert(1, func(v any) { resolved = v }, func(error) {})

	w, ok := tbl.take(1)
	require.True(t, ok)
	w.resolve("hello")
	require.Equal(t, "hello", resolved)

	_, ok = tbl.take(1)
	require.False(t, ok, "a second take of the same uid must report absent")
}

func TestPendingTableClearRejectsEveryWaiterExactlyOnce(t *testing.T) {
	tbl := newPendingTable()
	n := 50
	rejections := make([]error, n)
	for i := 0; i < n; i++ {
		i := i
		tbl.insert(uint64(i), func(any) {}, func(e error) { rejections[i] = e })
	}
	require.Equal(t, n, tbl.len())

	sentinel := errors.New("teardown")
	tbl.clear(sentinel)

	require.Equal(t, 0, tbl.len())
	for i, e := range rejections {
		require.Equal(t, sentinel, e, "waiter %d must be rejected with the supplied error", i)
	}
}

func TestPendingTableTakeAbsentUidIsSilent(t *testing.T) {
	tbl := newPendingTable()
	_, ok := tbl.take(999)
	require.False(t, ok)
}
