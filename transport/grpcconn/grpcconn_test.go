// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package grpcconn

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/relaylink/rfc"
	"github.com/stretchr/testify/require"
)

func TestGRPCConnClientCallsServer(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(func(conn *Connector) {
		conn.SetProvider(map[string]any{
			"echo": rfc.Func(func(ctx context.Context, args []any) (any, error) { return args[0], nil }),
		})
	})
	go srv.Serve(lis)
	defer srv.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	client, err := Dial(ctx, lis.Addr().String())
	require.NoError(t, err)

	result, err := client.Path("echo").Call(ctx, "hi")
	require.NoError(t, err)
	require.Equal(t, "hi", result)
}

func TestGRPCConnServerCallsClient(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	serverReady := make(chan *Connector, 1)
	srv := NewServer(func(conn *Connector) { serverReady <- conn })
	go srv.Serve(lis)
	defer srv.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	client, err := Dial(ctx, lis.Addr().String())
	require.NoError(t, err)
	client.SetProvider(map[string]any{
		"ping": rfc.Func(func(ctx context.Context, args []any) (any, error) { return "pong", nil }),
	})

	server := <-serverReady
	result, err := server.Path("ping").Call(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, "pong", result)
}

func TestGRPCConnDialFailsAgainstUnreachableAddr(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close()) // free the port immediately, nothing listens on it

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	client, err := Dial(ctx, addr)
	require.Error(t, err, "Dial opens its stream eagerly, so a refused connection fails it")
	require.Nil(t, client)
}
