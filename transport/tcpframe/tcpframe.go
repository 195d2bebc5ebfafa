// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package tcpframe is a reference rfc.Connector over a raw TCP socket,
// using a 4-byte big-endian length prefix to frame one JSON-encoded
// rfc.Invoke per message: a length-prefix-then-payload read loop with a
// single writer mutex, carrying the core's Invoke union.
package tcpframe

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/relaylink/rfc"
)

// MaxFrameSize bounds a single Invoke's encoded size.
const MaxFrameSize = 64 * 1024 * 1024

var (
	ErrClosed      = errors.New("tcpframe: connection closed")
	ErrFrameTooBig = errors.New("tcpframe: frame exceeds maximum size")
)

// Connector is a TCP-backed rfc.Connector. It embeds *rfc.Connector so
// callers use the usual Path/Call/Join/SetProvider surface; Connector
// itself only adds the socket read loop and frame codec.
type Connector struct {
	*rfc.Connector

	conn     net.Conn
	writeMu  sync.Mutex
	closed   atomic.Bool
	readDone chan struct{}
}

// Dial connects to addr and returns an OPEN Connector.
func Dial(ctx context.Context, addr string, opts ...rfc.ConnectorOption) (*Connector, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("tcpframe dial: %w", err)
	}
	return wrap(conn, opts...), nil
}

// Accept wraps an already-established net.Conn (as returned by a
// net.Listener) in a Connector, transitioning it straight to OPEN.
func Accept(conn net.Conn, opts ...rfc.ConnectorOption) *Connector {
	return wrap(conn, opts...)
}

func wrap(conn net.Conn, opts ...rfc.ConnectorOption) *Connector {
	c := &Connector{conn: conn, readDone: make(chan struct{})}
	c.Connector = rfc.NewConnector("tcpframe.Connector", append(
		[]rfc.ConnectorOption{rfc.WithCommunicatorOptions(rfc.WithSender(rfc.SenderFunc(c.send)))},
		opts...,
	)...)
	c.SetState(rfc.StateOpen)
	go c.readLoop()
	return c
}

func (c *Connector) send(ctx context.Context, inv *rfc.Invoke) error {
	if c.closed.Load() {
		return ErrClosed
	}
	payload, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("tcpframe encode: %w", err)
	}
	if len(payload) > MaxFrameSize {
		return ErrFrameTooBig
	}

	buf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(payload)))
	copy(buf[4:], payload)

	c.writeMu.Lock()
	_, err = c.conn.Write(buf)
	c.writeMu.Unlock()
	if err != nil {
		return fmt.Errorf("tcpframe write: %w", err)
	}
	return nil
}

func (c *Connector) readLoop() {
	defer close(c.readDone)
	defer c.teardown(nil)

	header := make([]byte, 4)
	ctx := context.Background()
	for {
		if _, err := io.ReadFull(c.conn, header); err != nil {
			return
		}
		n := binary.BigEndian.Uint32(header)
		if n == 0 || n > MaxFrameSize {
			return
		}
		payload := make([]byte, n)
		if _, err := io.ReadFull(c.conn, payload); err != nil {
			return
		}
		var inv rfc.Invoke
		if err := json.Unmarshal(payload, &inv); err != nil {
			continue
		}
		go c.ReplyData(ctx, &inv)
	}
}

func (c *Connector) teardown(err error) {
	if c.closed.Swap(true) {
		return
	}
	c.Close(err)
}

// CloseConn tears down the underlying Communicator, rejecting every
// outstanding call and waking every joiner, and then closes the socket.
func (c *Connector) CloseConn() error {
	c.teardown(nil)
	return c.conn.Close()
}
