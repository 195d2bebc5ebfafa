// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package rfc

import (
	"fmt"
	"sync/atomic"
)

// State is the Connector lifecycle enumeration: NONE < CONNECTING <
// OPEN < CLOSING < CLOSED. Only OPEN lets calls and joins proceed.
type State int32

const (
	StateNone State = iota
	StateConnecting
	StateOpen
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "NONE"
	case StateConnecting:
		return "CONNECTING"
	case StateOpen:
		return "OPEN"
	case StateClosing:
		return "CLOSING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Connector is C8: a thin state-tracking wrapper over a Communicator. It
// gates calls and joins by connection lifecycle, and exposes an immutable
// Header value captured once at construction.
//
// Concrete transports (transport/tcpframe, transport/jsonhttp,
// transport/wsconn, transport/grpcconn) embed *Connector and drive its
// state with SetState as their socket/stream lifecycle progresses; they
// call Destructor exactly once on any termination.
type Connector struct {
	*Communicator

	name  string
	state atomic.Int32

	header any
}

// NewConnector builds a Connector named name (used verbatim in its
// diagnostic strings — concrete subclasses should pass their own type
// name, e.g. "wsconn.Connector"). The initial state is NONE.
func NewConnector(name string, opts ...ConnectorOption) *Connector {
	o := &connectorOptions{}
	for _, opt := range opts {
		opt(o)
	}
	conn := &Connector{name: name, header: o.header}
	conn.state.Store(int32(StateNone))
	commOpts := append([]CommunicatorOption{WithReady(conn.inspectReady)}, o.comm...)
	conn.Communicator = NewCommunicator(commOpts...)
	return conn
}

// Header returns the opaque value captured at construction, unchanged
// for the Connector's lifetime.
func (c *Connector) Header() any { return c.header }

// State returns the current lifecycle state.
func (c *Connector) State() State { return State(c.state.Load()) }

// SetState transitions the Connector to s. Concrete subclasses call this
// as their transport progresses (e.g. CONNECTING on dial start, OPEN once
// the handshake completes, CLOSING when a graceful shutdown begins).
func (c *Connector) SetState(s State) { c.state.Store(int32(s)) }

// inspectReady names both the concrete subclass and the attempted method
// in every diagnostic, so each message is enough on its own to debug.
func (c *Connector) inspectReady(method string) error {
	switch c.State() {
	case StateOpen:
		return nil
	case StateNone:
		return &NotReadyError{Subclass: c.name, Method: method, Hint: "connect first."}
	case StateConnecting:
		return &NotReadyError{Subclass: c.name, Method: method, Hint: "it's on connecting, wait for a second."}
	case StateClosing:
		return &NotReadyError{Subclass: c.name, Method: method, Hint: "the connection is on closing."}
	case StateClosed:
		return &NotReadyError{Subclass: c.name, Method: method, Hint: "the connection has been closed."}
	default:
		return &NotReadyError{Subclass: c.name, Method: method, Hint: "unknown error, but not connected."}
	}
}

// Close transitions to CLOSING, invokes the Communicator's destructor
// with err (nil means the default "Connection has been closed." error),
// and finally marks the Connector CLOSED. Concrete transports call it
// from their own Close/teardown path on any kind of transport
// termination.
func (c *Connector) Close(err error) {
	c.SetState(StateClosing)
	c.Destructor(err)
	c.SetState(StateClosed)
}

var _ fmt.Stringer = State(0)
