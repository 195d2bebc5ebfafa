// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonhttp

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/relaylink/rfc"
	"github.com/stretchr/testify/require"
)

func TestJSONHTTPClientCallsServer(t *testing.T) {
	server := NewServerConnector(8)
	server.SetProvider(map[string]any{
		"echo": rfc.Func(func(ctx context.Context, args []any) (any, error) { return args[0], nil }),
	})

	ts := httptest.NewServer(server)
	defer ts.Close()

	client := Dial(ts.URL, WithPollInterval(10*time.Millisecond))
	defer client.Close(nil)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	result, err := client.Path("echo").Call(ctx, "hi")
	require.NoError(t, err)
	require.Equal(t, "hi", result)
}

func TestJSONHTTPServerCallsClientViaLongPoll(t *testing.T) {
	server := NewServerConnector(8)
	ts := httptest.NewServer(server)
	defer ts.Close()

	client := Dial(ts.URL, WithPollInterval(10*time.Millisecond))
	defer client.Close(nil)
	client.SetProvider(map[string]any{
		"ping": rfc.Func(func(ctx context.Context, args []any) (any, error) { return "pong", nil }),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	result, err := server.Path("ping").Call(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, "pong", result)
}

func TestJSONHTTPUnreachableEndpointFailsCall(t *testing.T) {
	client := Dial("http://127.0.0.1:1")
	defer client.Close(nil)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := client.Path("anything").Call(ctx)
	require.Error(t, err)
}
