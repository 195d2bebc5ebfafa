// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package rfc

import "log"

// CommunicatorOption configures a Communicator at construction.
type CommunicatorOption func(*communicatorOptions)

type communicatorOptions struct {
	sender  Sender
	ready   ReadyFunc
	logger  *log.Logger
	metrics Metrics
}

// WithSender installs the transport hook used to transmit outbound
// Invokes.
func WithSender(s Sender) CommunicatorOption {
	return func(o *communicatorOptions) { o.sender = s }
}

// WithReady installs the readiness predicate. Bare Communicators default
// to AlwaysReady; Connector overrides this with its own state-machine
// check.
func WithReady(r ReadyFunc) CommunicatorOption {
	return func(o *communicatorOptions) { o.ready = r }
}

// WithLogger installs a logger for diagnostic output (a dispatch reply
// that fails to send). Defaults to log.Default().
func WithLogger(l *log.Logger) CommunicatorOption {
	return func(o *communicatorOptions) { o.logger = l }
}

// WithMetrics installs an instrumentation hook (see metrics.go). Defaults
// to NoopMetrics.
func WithMetrics(m Metrics) CommunicatorOption {
	return func(o *communicatorOptions) { o.metrics = m }
}

// ConnectorOption configures a Connector at construction.
type ConnectorOption func(*connectorOptions)

type connectorOptions struct {
	header any
	comm   []CommunicatorOption
}

// WithHeader captures the opaque Header value surfaced read-only by
// Connector.Header().
func WithHeader(h any) ConnectorOption {
	return func(o *connectorOptions) { o.header = h }
}

// WithCommunicatorOptions forwards additional CommunicatorOptions to the
// Connector's embedded Communicator.
func WithCommunicatorOptions(opts ...CommunicatorOption) ConnectorOption {
	return func(o *connectorOptions) { o.comm = append(o.comm, opts...) }
}
