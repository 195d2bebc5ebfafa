// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package rfc

import (
	"context"
	"fmt"
	"reflect"
	"strings"
)

// Func is the callee-side signature every dispatchable provider member
// must satisfy. A provider is built out of nested maps/structs whose
// leaves are Func values (or methods with this exact signature); dispatch
// (C6) walks listener to find one and invokes it with the call's
// arguments. ctx carries the inbound call's cancellation.
type Func func(ctx context.Context, args []any) (any, error)

var stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()

// isForbiddenSegment rejects underscore-prefixed, underscore-suffixed,
// "constructor", "prototype", and their adjacent equivalents for
// reaching into internal slots.
func isForbiddenSegment(seg string) bool {
	if seg == "" {
		return true
	}
	if strings.HasPrefix(seg, "_") || strings.HasSuffix(seg, "_") {
		return true
	}
	switch seg {
	case "constructor", "prototype", "__proto__", "__class__":
		return true
	}
	return false
}

func accessDenied(listener, format string, args ...any) *DispatchError {
	return &DispatchError{Kind: ErrAccessDenied, Message: fmt.Sprintf("%q: "+format, append([]any{listener}, args...)...)}
}

// resolve walks listener against provider, enforcing the access rules at
// every segment, and returns the leaf Func to invoke.
func resolve(provider any, listener string) (Func, *DispatchError) {
	segments := strings.Split(listener, ".")
	var cur any = provider
	for _, seg := range segments {
		if isForbiddenSegment(seg) {
			return nil, accessDenied(listener, "%q is a forbidden member", seg)
		}
		next, derr := step(cur, seg, listener)
		if derr != nil {
			return nil, derr
		}
		cur = next
	}
	fn, ok := cur.(Func)
	if !ok {
		return nil, accessDenied(listener, "does not resolve to a callable function")
	}
	return fn, nil
}

// step advances the resolution one segment. Maps resolve by key; structs
// (and pointers to structs) resolve by exported method first, then
// exported field, giving method values their receiver already bound.
func step(cur any, seg, listener string) (any, *DispatchError) {
	if cur == nil {
		return nil, accessDenied(listener, "has no member %q on a nil provider", seg)
	}

	if m, ok := cur.(map[string]any); ok {
		v, exists := m[seg]
		if !exists {
			return nil, accessDenied(listener, "no such member %q", seg)
		}
		return v, nil
	}

	rv := reflect.ValueOf(cur)
	rt := rv.Type()

	if seg == "String" && rt.Implements(stringerType) {
		return nil, accessDenied(listener, "%q is the default string coercion, not callable remotely", seg)
	}

	if method := rv.MethodByName(seg); method.IsValid() {
		if fn, ok := method.Interface().(func(context.Context, []any) (any, error)); ok {
			return Func(fn), nil
		}
		return method.Interface(), nil
	}

	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, accessDenied(listener, "has no member %q on a nil pointer", seg)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, accessDenied(listener, "%s has no member %q", rt.String(), seg)
	}
	field := rv.FieldByName(seg)
	if !field.IsValid() || !field.CanInterface() {
		return nil, accessDenied(listener, "%s has no exported member %q", rt.String(), seg)
	}
	return field.Interface(), nil
}

// invoke calls fn, recovering from a panic and folding it into the same
// error path a returned error would take — dispatch must never propagate
// a failure past replyData.
func invoke(ctx context.Context, fn Func, args []any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("panic in remote function: %v", r)
			}
		}
	}()
	return fn(ctx, args)
}

// dispatchResult is what dispatch computes before the Communicator turns
// it into a wire Invoke; kept separate so tests can exercise dispatch
// logic without a transport.
type dispatchResult struct {
	uid     uint64
	success bool
	value   any
}

// dispatch implements C6 in full: provider presence check, path
// resolution with access control, invocation, and reply construction. It
// never returns an error to its caller — every failure becomes a
// success=false dispatchResult.
func dispatch(ctx context.Context, providerSet bool, provider any, call *FunctionCall, metrics Metrics) dispatchResult {
	done := metrics.DispatchStarted(call.Listener)
	success := false
	defer func() { done(success) }()

	if !providerSet {
		return dispatchResult{uid: call.Uid, success: false, value: Serialize(WithStack(&DispatchError{
			Kind:    ErrProviderUnset,
			Message: "provider not specified yet",
		}))}
	}
	if provider == nil {
		return dispatchResult{uid: call.Uid, success: false, value: Serialize(WithStack(&DispatchError{
			Kind:    ErrProviderNil,
			Message: "provider would not be",
		}))}
	}

	fn, derr := resolve(provider, call.Listener)
	if derr != nil {
		return dispatchResult{uid: call.Uid, success: false, value: Serialize(WithStack(derr))}
	}

	args := make([]any, len(call.Parameters))
	for i, p := range call.Parameters {
		args[i] = p.Value
	}

	result, err := invoke(ctx, fn, args)
	if err != nil {
		return dispatchResult{uid: call.Uid, success: false, value: Serialize(err)}
	}
	success = true
	return dispatchResult{uid: call.Uid, success: true, value: result}
}
