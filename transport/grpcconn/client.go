// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package grpcconn

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/relaylink/rfc"
)

// Dial connects to addr and opens the single bidirectional stream this
// package's Connector is built on, returning an OPEN Connector.
func Dial(ctx context.Context, addr string, opts ...rfc.ConnectorOption) (*Connector, error) {
	cc, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpcconn dial: %w", err)
	}

	conn := newConnector(opts...)

	stream, err := cc.NewStream(ctx, &grpc.StreamDesc{
		StreamName:    methodName,
		ServerStreams: true,
		ClientStreams: true,
	}, fullMethod, grpc.CallContentSubtype(codecName))
	if err != nil {
		cc.Close()
		return nil, fmt.Errorf("grpcconn new stream: %w", err)
	}

	conn.writeMu.Lock()
	conn.stream = stream
	conn.writeMu.Unlock()
	conn.SetState(rfc.StateOpen)

	go func() {
		pump(ctx, stream, conn)
		cc.Close()
	}()

	return conn, nil
}
