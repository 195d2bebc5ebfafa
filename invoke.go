// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package rfc

import "encoding/json"

// Parameter is one positional argument of an outbound call, tagged with
// the sender's reflective type-of string for debugging. The callee never
// coerces by Type; it only ever reads Value.
type Parameter struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// typeOf returns the JS-flavored primitive category string for v, matching
// the token set a JS `typeof` would produce. The core never branches on
// this value; it exists so a peer inspecting wire traffic can make sense of
// an argument without decoding it.
func typeOf(v any) string {
	switch v.(type) {
	case nil:
		return "undefined"
	case bool:
		return "boolean"
	case string:
		return "string"
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return "number"
	default:
		return "object"
	}
}

// Invoke is the tagged union carried by the transport: either a call
// request (Function != nil) or a call response (Return != nil). Exactly
// one of the two is set; the wire form never carries both, discriminated
// by presence of the "listener" field.
type Invoke struct {
	Function *FunctionCall
	Return   *ReturnValue
}

// FunctionCall is an outbound/inbound call request. Listener is a
// dot-separated path resolved against the peer's provider; Uid is unique
// among the sender's currently outstanding calls.
type FunctionCall struct {
	Uid        uint64      `json:"uid"`
	Listener   string      `json:"listener"`
	Parameters []Parameter `json:"parameters"`
}

// ReturnValue is the reply to a FunctionCall. Success=true means Value is
// the return value; Success=false means Value is a serialized error record
// (see ErrorRecord in errors.go) or, if the callee threw a non-error value,
// that value verbatim.
type ReturnValue struct {
	Uid     uint64 `json:"uid"`
	Success bool   `json:"success"`
	Value   any    `json:"value"`
}

// wireFunction and wireReturn mirror FunctionCall/ReturnValue but exist
// purely so encoding/json sees the presence-or-absence of "listener" as
// the discriminant: the serializer must never emit "listener" on a
// return.
type wireFunction struct {
	Uid        uint64      `json:"uid"`
	Listener   string      `json:"listener"`
	Parameters []Parameter `json:"parameters"`
}

type wireReturn struct {
	Uid     uint64 `json:"uid"`
	Success bool   `json:"success"`
	Value   any    `json:"value"`
}

// NewCall builds an outbound FunctionCall Invoke for listener, tagging
// each argument with its reflective type.
func NewCall(uid uint64, listener string, args []any) *Invoke {
	params := make([]Parameter, len(args))
	for i, a := range args {
		params[i] = Parameter{Type: typeOf(a), Value: a}
	}
	return &Invoke{Function: &FunctionCall{Uid: uid, Listener: listener, Parameters: params}}
}

// NewReturn builds an outbound ReturnValue Invoke.
func NewReturn(uid uint64, success bool, value any) *Invoke {
	return &Invoke{Return: &ReturnValue{Uid: uid, Success: success, Value: value}}
}

// IsFunction reports whether this Invoke is a call request.
func (i *Invoke) IsFunction() bool { return i != nil && i.Function != nil }

// IsReturn reports whether this Invoke is a call response.
func (i *Invoke) IsReturn() bool { return i != nil && i.Return != nil }

// MarshalJSON emits exactly one of the two wire shapes, omitting
// "listener" entirely on returns.
func (i Invoke) MarshalJSON() ([]byte, error) {
	if i.Function != nil {
		return json.Marshal(wireFunction{
			Uid:        i.Function.Uid,
			Listener:   i.Function.Listener,
			Parameters: i.Function.Parameters,
		})
	}
	if i.Return != nil {
		return json.Marshal(wireReturn{
			Uid:     i.Return.Uid,
			Success: i.Return.Success,
			Value:   i.Return.Value,
		})
	}
	return json.Marshal(wireReturn{})
}

// UnmarshalJSON classifies the message by presence of "listener" and
// fills the matching half of the union.
func (i *Invoke) UnmarshalJSON(data []byte) error {
	var probe struct {
		Listener *string `json:"listener"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Listener != nil {
		var f wireFunction
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		i.Function = &FunctionCall{Uid: f.Uid, Listener: f.Listener, Parameters: f.Parameters}
		i.Return = nil
		return nil
	}
	var r wireReturn
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	i.Return = &ReturnValue{Uid: r.Uid, Success: r.Success, Value: r.Value}
	i.Function = nil
	return nil
}
