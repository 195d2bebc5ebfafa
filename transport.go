// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package rfc

import "context"

// Sender is what a Communicator needs from its transport: deliver one
// already-serialized Invoke to the peer. Concrete Connectors (transport/*)
// implement this over whatever wire they carry — a TCP socket, a
// WebSocket, an HTTP POST, a gRPC stream.
type Sender interface {
	SendData(ctx context.Context, inv *Invoke) error
}

// SenderFunc adapts a plain function to a Sender.
type SenderFunc func(ctx context.Context, inv *Invoke) error

func (f SenderFunc) SendData(ctx context.Context, inv *Invoke) error { return f(ctx, inv) }

// ReadyFunc is the injectable form of C7's abstract InspectReady: given the
// name of the operation being attempted, return a diagnostic error if the
// Communicator is not ready to issue it, or nil if it is. Connector (C8)
// supplies its own state-machine-backed ReadyFunc; a bare Communicator
// used directly in tests can supply an always-ready one.
type ReadyFunc func(method string) error

// AlwaysReady never rejects a call; useful for tests and for embedding a
// Communicator in a host that manages readiness itself.
func AlwaysReady(string) error { return nil }
