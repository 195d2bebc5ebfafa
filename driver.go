// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package rfc

import (
	"context"
	"strings"
)

// Driver is the client-side proxy of C5. Go has no dynamic attribute
// interception, so it exposes an explicit builder form:
// driver.Path("a.b.c").Call(ctx, x, y) in place of driver.a.b.c(x, y). The
// wire effect — one outbound call with listener "a.b.c" and one Parameter
// per argument — is identical either way.
//
// A Driver holds no per-path state; two Handles built from the same path
// string behave identically and neither caches anything beyond the path.
type Driver struct {
	comm *Communicator
}

func newDriver(c *Communicator) *Driver { return &Driver{comm: c} }

// Path starts (or, called on an existing Handle, extends) a dotted member
// chain. Each call appends one segment list to the path; segments are
// joined with ".".
func (d *Driver) Path(segments ...string) *Handle {
	return &Handle{comm: d.comm, path: strings.Join(segments, ".")}
}

// Handle is a reusable, stateless reference to one dotted path on the
// remote provider. Further Path calls extend the chain, and
// Call/Apply/Bind are its call/apply/bind meta-methods.
type Handle struct {
	comm *Communicator
	path string
}

// Path extends the chain: h.Path("a").Path("b") and h.Path("a", "b")
// produce the same listener path.
func (h *Handle) Path(segments ...string) *Handle {
	all := append([]string{h.path}, segments...)
	return &Handle{comm: h.comm, path: strings.Join(all, ".")}
}

// String returns the dotted listener path this Handle resolves to.
func (h *Handle) String() string { return h.path }

// Call invokes the remote function at this path with args, synthesizing
// exactly one outbound call. It is the direct equivalent of
// `driver.a.b.c(x, y)`.
func (h *Handle) Call(ctx context.Context, args ...any) (any, error) {
	return h.comm.callFunction(ctx, h.path, args)
}

// Apply invokes the remote function with an argument slice built by the
// caller, the equivalent of JS Function.prototype.apply on the
// materialized function node.
func (h *Handle) Apply(ctx context.Context, args []any) (any, error) {
	return h.comm.callFunction(ctx, h.path, args)
}

// Bind returns a BoundCall that prepends leading to every future Apply/
// Call, the equivalent of Function.prototype.bind.
func (h *Handle) Bind(leading ...any) *BoundCall {
	return &BoundCall{handle: h, leading: leading}
}

// BoundCall is a Handle with some leading arguments already fixed by Bind.
type BoundCall struct {
	handle  *Handle
	leading []any
}

// Call invokes the bound function with leading followed by args.
func (b *BoundCall) Call(ctx context.Context, args ...any) (any, error) {
	return b.handle.Apply(ctx, append(append([]any{}, b.leading...), args...))
}

// Apply invokes the bound function with leading followed by args.
func (b *BoundCall) Apply(ctx context.Context, args []any) (any, error) {
	return b.handle.Apply(ctx, append(append([]any{}, b.leading...), args...))
}
