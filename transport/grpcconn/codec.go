// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package grpcconn is a reference rfc.Connector carrying Invoke frames
// over a single bidirectional gRPC stream, with no .proto/codegen step:
// a passthrough codec registered under the "raw" content-subtype lets
// both ends exchange already-JSON-encoded Invoke bytes directly, the same
// technique gRPC streaming proxies use to move opaque payloads without
// knowing the wrapped message type. It also wires
// go.opentelemetry.io/otel metrics (rfc.OTelMetrics) directly.
package grpcconn

import "google.golang.org/grpc/encoding"

const codecName = "raw"

// rawBytes is the message type SendMsg/RecvMsg exchange on the stream;
// rawCodec.Marshal/Unmarshal pass its contents through unchanged.
type rawBytes []byte

type rawCodec struct{}

func (rawCodec) Marshal(v any) ([]byte, error) {
	b, ok := v.(*rawBytes)
	if !ok {
		return nil, errNotRawBytes
	}
	return []byte(*b), nil
}

func (rawCodec) Unmarshal(data []byte, v any) error {
	b, ok := v.(*rawBytes)
	if !ok {
		return errNotRawBytes
	}
	*b = append((*b)[:0], data...)
	return nil
}

func (rawCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(rawCodec{})
}
