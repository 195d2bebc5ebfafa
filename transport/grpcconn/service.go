// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package grpcconn

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"

	"github.com/relaylink/rfc"
)

const (
	serviceName = "rfc.Stream"
	methodName  = "Pipe"
	fullMethod  = "/" + serviceName + "/" + methodName
)

// grpcStream is the subset of grpc.ServerStream/grpc.ClientStream the
// pump needs; writing to this instead of either concrete type lets the
// same pump drive both ends of the connection.
type grpcStream interface {
	SendMsg(m any) error
	RecvMsg(m any) error
}

// pump forwards Invoke frames in both directions between stream and conn
// until the stream ends. It is run once per Connector, in its own
// goroutine, for the lifetime of the connection.
func pump(ctx context.Context, stream grpcStream, conn *Connector) {
	for {
		var buf rawBytes
		if err := stream.RecvMsg(&buf); err != nil {
			conn.teardown(err)
			return
		}
		var inv rfc.Invoke
		if err := json.Unmarshal(buf, &inv); err != nil {
			continue
		}
		go conn.ReplyData(ctx, &inv)
	}
}

func encodeInvoke(inv *rfc.Invoke) (rawBytes, error) {
	b, err := json.Marshal(inv)
	if err != nil {
		return nil, err
	}
	return rawBytes(b), nil
}

// serviceDesc is a hand-built grpc.ServiceDesc: one bidirectional stream,
// no .proto file, because the payload is already-framed Invoke JSON
// carried by the "raw" codec rather than a generated message type.
var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*any)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    methodName,
			Handler:       streamHandler,
			ServerStreams: true,
			ClientStreams: true,
		},
	},
	Metadata: "grpcconn.proto",
}

// streamHandler is invoked by grpc once per incoming stream; srv is the
// *Server instance RegisterService was called with. Each stream gets its
// own Connector, matching one rfc.Communicator per logical connection.
func streamHandler(srv any, stream grpc.ServerStream) error {
	s := srv.(*Server)
	conn := newConnector(s.opts...)
	conn.attachServerStream(stream)
	if s.handler != nil {
		s.handler(conn)
	}
	pump(stream.Context(), stream, conn)
	return nil
}
