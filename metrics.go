// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package rfc

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func listenerAttr(listener string) attribute.KeyValue { return attribute.String("listener", listener) }

func outcomeAttr(outcome string) attribute.KeyValue { return attribute.String("outcome", outcome) }

// Metrics is the instrumentation hook the dispatch engine (C6) and call
// issuance report through. It is transport-agnostic: any Connector can
// wire it to an OTel MeterProvider, not just transport/grpcconn, which is
// simply the reference wiring.
type Metrics interface {
	// CallStarted is invoked when an outbound call is issued, before
	// sendData; it returns a function to call when the call settles.
	CallStarted(listener string) func(success bool)
	// DispatchStarted is invoked when an inbound FunctionCall begins
	// dispatch; it returns a function to call once dispatch has produced
	// its result, before the reply is sent.
	DispatchStarted(listener string) func(success bool)
}

type noopMetrics struct{}

func (noopMetrics) CallStarted(string) func(bool)     { return func(bool) {} }
func (noopMetrics) DispatchStarted(string) func(bool) { return func(bool) {} }

// NoopMetrics discards all instrumentation; it is the Communicator default.
var NoopMetrics Metrics = noopMetrics{}

// OTelMetrics records in-flight call counts and dispatch latency through
// an OTel Meter.
type OTelMetrics struct {
	inFlight  metric.Int64UpDownCounter
	latency   metric.Float64Histogram
	dispatchN metric.Int64Counter
}

// NewOTelMetrics builds an OTelMetrics from meter, registering the
// instruments it needs. meter is typically
// otel.Meter("github.com/relaylink/rfc").
func NewOTelMetrics(meter metric.Meter) (*OTelMetrics, error) {
	inFlight, err := meter.Int64UpDownCounter(
		"rfc.calls.in_flight",
		metric.WithDescription("number of outbound RFC calls awaiting a reply"),
	)
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram(
		"rfc.dispatch.latency",
		metric.WithDescription("time spent dispatching an inbound call against the provider"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	dispatchN, err := meter.Int64Counter(
		"rfc.dispatch.count",
		metric.WithDescription("number of inbound calls dispatched, by outcome"),
	)
	if err != nil {
		return nil, err
	}
	return &OTelMetrics{inFlight: inFlight, latency: latency, dispatchN: dispatchN}, nil
}

func (m *OTelMetrics) CallStarted(listener string) func(bool) {
	ctx := context.Background()
	attrs := metric.WithAttributes(listenerAttr(listener))
	m.inFlight.Add(ctx, 1, attrs)
	return func(success bool) {
		m.inFlight.Add(ctx, -1, attrs)
	}
}

func (m *OTelMetrics) DispatchStarted(listener string) func(bool) {
	ctx := context.Background()
	start := time.Now()
	return func(success bool) {
		elapsed := float64(time.Since(start)) / float64(time.Millisecond)
		outcome := "error"
		if success {
			outcome = "success"
		}
		attrs := metric.WithAttributes(listenerAttr(listener), outcomeAttr(outcome))
		m.latency.Record(ctx, elapsed, attrs)
		m.dispatchN.Add(ctx, 1, attrs)
	}
}
