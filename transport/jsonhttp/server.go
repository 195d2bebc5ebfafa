// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonhttp

import (
	"context"
	"net/http"

	gorillarpc "github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"

	"github.com/relaylink/rfc"
)

// ServerConnector is the server side of the jsonhttp pair. It implements
// http.Handler (mount it at any path, e.g. "/rfc") and is itself an
// rfc.Connector: SendData queues outbound Invokes for the client's next
// long-poll instead of writing to a live socket, since none exists
// between HTTP requests.
type ServerConnector struct {
	*rfc.Connector

	outbox  chan *rfc.Invoke
	handler http.Handler
}

// NewServerConnector builds a ServerConnector with an outbox of the given
// capacity (how many outbound Invokes may queue before SendData blocks).
func NewServerConnector(outboxCapacity int, opts ...rfc.ConnectorOption) *ServerConnector {
	s := &ServerConnector{outbox: make(chan *rfc.Invoke, outboxCapacity)}
	s.Connector = rfc.NewConnector("jsonhttp.ServerConnector", append(
		[]rfc.ConnectorOption{rfc.WithCommunicatorOptions(rfc.WithSender(rfc.SenderFunc(s.send)))},
		opts...,
	)...)

	rpcServer := gorillarpc.NewServer()
	rpcServer.RegisterCodec(json2.NewCodec(), "application/json")
	if err := rpcServer.RegisterService(&rpcService{conn: s}, "RPCService"); err != nil {
		panic("jsonhttp: RegisterService: " + err.Error())
	}
	s.handler = rpcServer

	s.SetState(rfc.StateOpen)
	return s
}

func (s *ServerConnector) send(ctx context.Context, inv *rfc.Invoke) error {
	select {
	case s.outbox <- inv:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ServeHTTP dispatches both "RPCService.Invoke" and "RPCService.Poll"
// JSON-RPC 2.0 requests through the gorilla/rpc reflection server.
func (s *ServerConnector) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// Close tears down the Communicator; no socket to release, HTTP having
// none to hold open between requests.
func (s *ServerConnector) Close(err error) {
	s.Connector.Close(err)
}
