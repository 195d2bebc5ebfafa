// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wsconn is a reference rfc.Connector over a *websocket.Conn,
// using github.com/gorilla/websocket (the dependency the broader
// retrieval pack's fluxcd-flux carries). WebSocket already frames
// messages, so one Invoke maps to exactly one WS text/binary message —
// no length-prefixing needed, unlike transport/tcpframe's raw TCP socket.
package wsconn

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/relaylink/rfc"
)

// Connector is a WebSocket-backed rfc.Connector.
type Connector struct {
	*rfc.Connector

	ws      *websocket.Conn
	writeMu sync.Mutex
	closed  atomic.Bool
}

// Wrap adapts an already-upgraded *websocket.Conn (client or server side)
// into an OPEN Connector and starts its read loop.
func Wrap(ws *websocket.Conn, opts ...rfc.ConnectorOption) *Connector {
	c := &Connector{ws: ws}
	c.Connector = rfc.NewConnector("wsconn.Connector", append(
		[]rfc.ConnectorOption{rfc.WithCommunicatorOptions(rfc.WithSender(rfc.SenderFunc(c.send)))},
		opts...,
	)...)
	c.SetState(rfc.StateOpen)
	go c.readLoop()
	return c
}

func (c *Connector) send(ctx context.Context, inv *rfc.Invoke) error {
	if c.closed.Load() {
		return websocket.ErrCloseSent
	}
	payload, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("wsconn encode: %w", err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

func (c *Connector) readLoop() {
	defer c.teardown(nil)
	ctx := context.Background()
	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
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

// CloseConn closes the WebSocket connection and tears down the
// Communicator on any transport termination.
func (c *Connector) CloseConn() error {
	c.teardown(nil)
	return c.ws.Close()
}
