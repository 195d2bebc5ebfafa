// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package rfc

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Communicator is C7: the symmetric peer that multiplexes concurrent
// in-flight calls over a single message channel, dispatches incoming
// calls against a locally supplied provider, and coordinates graceful
// shutdown. It is transport-agnostic: callers wire a Sender in via
// WithSender (or a Connector does it for them) and feed inbound messages
// through ReplyData.
type Communicator struct {
	mu          sync.RWMutex
	provider    any
	providerSet bool

	pending *pendingTable
	join    *joinCoordinator
	driver  *Driver

	seq atomic.Uint64

	sender  Sender
	ready   ReadyFunc
	logger  *log.Logger
	metrics Metrics

	destroyOnce sync.Once
	destroyed   atomic.Bool
}

// NewCommunicator builds a Communicator. With no options it is a usable,
// always-ready, sender-less peer suitable for local dispatch tests; real
// use installs at least WithSender, and Connector installs WithReady too.
func NewCommunicator(opts ...CommunicatorOption) *Communicator {
	o := &communicatorOptions{
		ready:   AlwaysReady,
		logger:  log.Default(),
		metrics: NoopMetrics,
	}
	for _, opt := range opts {
		opt(o)
	}
	c := &Communicator{
		pending: newPendingTable(),
		join:    newJoinCoordinator(),
		sender:  o.sender,
		ready:   o.ready,
		logger:  o.logger,
		metrics: o.metrics,
	}
	c.driver = newDriver(c)
	return c
}

// SetProvider installs p as the object dispatched calls resolve against.
// It may be called at any time, including before the transport is ready;
// in-flight dispatches read the provider once, at the start of their
// resolution step, so they see a consistent value.
func (c *Communicator) SetProvider(p any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.provider = p
	c.providerSet = true
}

// GetProvider returns the currently installed provider and whether one
// has ever been installed.
func (c *Communicator) GetProvider() (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.provider, c.providerSet
}

// GetDriver returns the shared client-side proxy (C5). It is safe to call
// before the Communicator is ready; actual transmission is gated by
// InspectReady at call time.
func (c *Communicator) GetDriver() *Driver { return c.driver }

// Path is a convenience shorthand for GetDriver().Path(...).
func (c *Communicator) Path(segments ...string) *Handle { return c.driver.Path(segments...) }

// Join suspends until the Communicator is destroyed. It first checks
// InspectReady and returns immediately with that error if the
// Communicator is not in a joinable state.
func (c *Communicator) Join() error {
	if err := c.ready("Join"); err != nil {
		return err
	}
	c.join.wait()
	return nil
}

// JoinFor suspends up to d: true if awoken by destruction, false if the
// timeout elapsed first.
func (c *Communicator) JoinFor(d time.Duration) (bool, error) {
	if err := c.ready("Join"); err != nil {
		return false, err
	}
	return c.join.waitFor(d), nil
}

// JoinUntil suspends until the absolute deadline, mirroring join(deadline).
func (c *Communicator) JoinUntil(deadline time.Time) (bool, error) {
	if err := c.ready("Join"); err != nil {
		return false, err
	}
	return c.join.waitUntil(deadline), nil
}

// JoinContext suspends until destruction or ctx cancellation, the
// idiomatic Go entry point alongside the duration/deadline forms above.
func (c *Communicator) JoinContext(ctx context.Context) error {
	if err := c.ready("Join"); err != nil {
		return err
	}
	return c.join.waitContext(ctx)
}

// ReplyData is the transport's entry point for every received message.
// FunctionCall messages are dispatched against the provider and
// answered with a Return; Return messages settle the matching pending
// call, or are dropped silently if no such call is outstanding (a late
// reply after destruction).
func (c *Communicator) ReplyData(ctx context.Context, inv *Invoke) {
	switch {
	case inv.IsFunction():
		c.handleFunction(ctx, inv.Function)
	case inv.IsReturn():
		c.handleReturn(inv.Return)
	}
}

func (c *Communicator) handleFunction(ctx context.Context, call *FunctionCall) {
	provider, providerSet := c.GetProvider()
	result := dispatch(ctx, providerSet, provider, call, c.metrics)
	reply := NewReturn(result.uid, result.success, result.value)
	if c.sender == nil {
		return
	}
	if err := c.sender.SendData(ctx, reply); err != nil {
		c.logger.Printf("rfc: failed to send reply for uid=%d: %v", result.uid, err)
	}
}

func (c *Communicator) handleReturn(ret *ReturnValue) {
	w, ok := c.pending.take(ret.Uid)
	if !ok {
		return
	}
	if ret.Success {
		w.resolve(ret.Value)
	} else {
		w.reject(replyError(ret.Value))
	}
}

// replyError turns a failed ReturnValue.Value back into an error for the
// local caller. The core does not reconstruct a live error; it surfaces
// the record, wrapped just enough to satisfy Go's error interface, via
// RemoteError.
func replyError(value any) error {
	if rec, ok := value.(ErrorRecord); ok {
		return &RemoteError{Record: rec}
	}
	if m, ok := value.(map[string]any); ok {
		rec := ErrorRecord{Fields: map[string]any{}}
		for k, v := range m {
			switch k {
			case "name":
				if s, ok := v.(string); ok {
					rec.Name = s
				}
			case "message":
				if s, ok := v.(string); ok {
					rec.Message = s
				}
			case "stack":
				if s, ok := v.(string); ok {
					rec.Stack = s
				}
			default:
				rec.Fields[k] = v
			}
		}
		return &RemoteError{Record: rec}
	}
	return &RemoteError{Value: value}
}

// RemoteError wraps whatever the remote peer rejected a call with. If the
// remote threw a real error it is available structured in Record; if it
// rejected with a raw, non-error value, Value carries it verbatim instead.
type RemoteError struct {
	Record ErrorRecord
	Value  any
}

func (e *RemoteError) Error() string {
	if e.Record.Message != "" || e.Record.Name != "" {
		if e.Record.Name != "" {
			return e.Record.Name + ": " + e.Record.Message
		}
		return e.Record.Message
	}
	return formatAny(e.Value)
}

func formatAny(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// callFunction is C7's _Call_function: mint a uid, install a waiter,
// transmit, and let the pending table or the destructor settle it.
func (c *Communicator) callFunction(ctx context.Context, path string, args []any) (any, error) {
	if err := c.ready(path); err != nil {
		return nil, err
	}

	uid := c.seq.Add(1)
	resultCh := make(chan any, 1)
	errCh := make(chan error, 1)
	c.pending.insert(uid,
		func(v any) { resultCh <- v },
		func(e error) { errCh <- e },
	)

	done := c.metrics.CallStarted(path)
	call := NewCall(uid, path, args)

	if c.sender == nil {
		c.pending.take(uid)
		done(false)
		return nil, &NotReadyError{Subclass: "Communicator", Method: path, Hint: "no sender configured."}
	}

	if err := c.sender.SendData(ctx, call); err != nil {
		if _, ok := c.pending.take(uid); ok {
			done(false)
		}
		return nil, err
	}

	select {
	case v := <-resultCh:
		done(true)
		return v, nil
	case e := <-errCh:
		done(false)
		return nil, e
	case <-ctx.Done():
		c.pending.take(uid)
		done(false)
		return nil, ctx.Err()
	}
}

// Destructor rejects every outstanding pending call with err (or
// ErrConnectionClosed if err is nil), clears the pending table, and wakes
// every joiner. It is idempotent: a second call is a no-op.
func (c *Communicator) Destructor(err error) {
	c.destroyOnce.Do(func() {
		c.destroyed.Store(true)
		if err == nil {
			err = ErrConnectionClosed
		}
		c.pending.clear(err)
		c.join.notifyAll()
	})
}

// Destroyed reports whether Destructor has run.
func (c *Communicator) Destroyed() bool { return c.destroyed.Load() }
