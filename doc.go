// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rfc implements a transport-agnostic Remote Function Call
// runtime: two peers connected by any bidirectional message channel can
// invoke each other's functions as if they were local, including nested
// member paths, with results and thrown errors returned asynchronously.
//
// # Core vs. transport
//
// This package is the symmetric peer — the Communicator — that
// multiplexes concurrent in-flight calls over a single channel, dispatches
// incoming calls against a locally supplied provider, enforces
// access-control rules on dispatch, synthesizes a client-side proxy for
// outbound calls, serializes thrown errors, and coordinates graceful
// shutdown. It knows nothing about sockets, framing, or serialization
// bytes on the wire; those are supplied by a Connector subclass living in
// one of the transport/* subpackages:
//
//	transport/tcpframe  - length-prefixed framing over a raw TCP socket
//	transport/jsonhttp  - JSON-RPC 2.0 over HTTP (gorilla/rpc/v2/json2)
//	transport/wsconn    - full duplex over a *websocket.Conn
//	transport/grpcconn  - bidirectional-streaming Invoke frames over gRPC
//
// Application code should depend only on Communicator/Connector/Driver;
// picking a transport is a deployment decision, not a code change.
//
// # Usage
//
// Server side: install a provider and feed inbound messages in.
//
//	conn := tcpframe.Accept(socket)
//	conn.SetProvider(map[string]any{
//	    "echo": rfc.Func(func(ctx context.Context, args []any) (any, error) {
//	        return args[0], nil
//	    }),
//	})
//
// Client side: obtain the driver and call through it.
//
//	result, err := conn.Path("echo").Call(ctx, 42)
//
// # Architecture
//
// The package separates concerns into small, independently testable
// pieces:
//
//   - invoke.go: the IFunction/IReturn tagged union (C1)
//   - errors.go: error serialization and diagnostic error types (C2)
//   - pending.go: the call-id -> waiter table (C3)
//   - join.go: the disconnect-aware condition variable (C4)
//   - driver.go: the dotted-path client proxy (C5)
//   - dispatch.go: path resolution, access control, invocation (C6)
//   - communicator.go: the composed core (C7)
//   - connector.go: the lifecycle gate (C8)
//   - options.go, transport.go, metrics.go: ambient plumbing shared by
//     every transport/* implementation
package rfc
