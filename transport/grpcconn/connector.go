// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package grpcconn

import (
	"context"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"

	"github.com/relaylink/rfc"
)

// Connector is a gRPC-backed rfc.Connector, usable from either the
// dialing side (via Dial) or the accepting side (registered into a
// grpc.Server via Serve).
type Connector struct {
	*rfc.Connector

	writeMu sync.Mutex
	stream  grpcStream
	closed  atomic.Bool
}

// defaultMetrics builds the reference OTel instrumentation every
// grpcconn.Connector gets unless the caller overrides it. Passing a
// WithCommunicatorOptions(rfc.WithMetrics(...)) of the caller's own after
// this in the options list (Dial/Serve append caller opts last) wins,
// since later CommunicatorOptions overwrite earlier ones.
func defaultMetrics() rfc.ConnectorOption {
	m, err := rfc.NewOTelMetrics(otel.Meter("github.com/relaylink/rfc/transport/grpcconn"))
	if err != nil {
		return rfc.WithCommunicatorOptions()
	}
	return rfc.WithCommunicatorOptions(rfc.WithMetrics(m))
}

func newConnector(opts ...rfc.ConnectorOption) *Connector {
	c := &Connector{}
	all := append([]rfc.ConnectorOption{defaultMetrics()}, opts...)
	all = append(all, rfc.WithCommunicatorOptions(rfc.WithSender(rfc.SenderFunc(c.send))))
	c.Connector = rfc.NewConnector("grpcconn.Connector", all...)
	return c
}

func (c *Connector) attachServerStream(s grpcStream) {
	c.writeMu.Lock()
	c.stream = s
	c.writeMu.Unlock()
	c.SetState(rfc.StateOpen)
}

// send serializes every outbound SendMsg under writeMu: gRPC forbids
// concurrent SendMsg calls on one stream, and the Communicator issues
// calls from as many goroutines as callers use concurrently.
func (c *Connector) send(ctx context.Context, inv *rfc.Invoke) error {
	buf, err := encodeInvoke(inv)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.stream == nil {
		return rfc.ErrConnectionClosed
	}
	return c.stream.SendMsg(&buf)
}

func (c *Connector) teardown(err error) {
	if c.closed.Swap(true) {
		return
	}
	c.Close(err)
}
