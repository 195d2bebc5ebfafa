// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package grpcconn

import (
	"net"

	"google.golang.org/grpc"

	"github.com/relaylink/rfc"
)

// Server accepts one Connector per incoming gRPC stream. Handler is
// called once per new Connector, synchronously, from the stream's own
// goroutine — install a provider and return quickly; the stream stays
// open (and the Connector OPEN) for the lifetime of the connection.
type Server struct {
	grpcServer *grpc.Server
	handler    func(*Connector)
	opts       []rfc.ConnectorOption
}

// NewServer builds a Server; handler is invoked with each new Connector
// as soon as its stream is established.
func NewServer(handler func(*Connector), opts ...rfc.ConnectorOption) *Server {
	s := &Server{handler: handler, opts: opts}
	gs := grpc.NewServer()
	gs.RegisterService(&serviceDesc, s)
	s.grpcServer = gs
	return s
}

// Serve blocks accepting connections on lis until it errors or the
// listener is closed.
func (s *Server) Serve(lis net.Listener) error {
	return s.grpcServer.Serve(lis)
}

// Stop gracefully stops the underlying gRPC server.
func (s *Server) Stop() { s.grpcServer.GracefulStop() }
