// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package wsconn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/relaylink/rfc"
	"github.com/stretchr/testify/require"
)

func TestWSConnRoundTripEcho(t *testing.T) {
	upgrader := websocket.Upgrader{}
	serverReady := make(chan *Connector, 1)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		serverReady <- Wrap(ws)
	}))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/"
	clientWS, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	client := Wrap(clientWS)
	defer client.CloseConn()

	server := <-serverReady
	defer server.CloseConn()
	server.SetProvider(map[string]any{
		"echo": rfc.Func(func(ctx context.Context, args []any) (any, error) { return args[0], nil }),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	result, err := client.Path("echo").Call(ctx, "hello")
	require.NoError(t, err)
	require.Equal(t, "hello", result)
}

func TestWSConnCloseConnRejectsOutstandingCalls(t *testing.T) {
	upgrader := websocket.Upgrader{}
	serverReady := make(chan *Connector, 1)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		serverReady <- Wrap(ws)
	}))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/"
	clientWS, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	client := Wrap(clientWS)
	server := <-serverReady
	defer server.CloseConn()

	errCh := make(chan error, 1)
	go func() {
		_, err := client.Path("never").Call(context.Background())
		errCh <- err
	}()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, client.CloseConn())

	select {
	case err := <-errCh:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("call did not fail after CloseConn")
	}
}
