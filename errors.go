// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package rfc

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	pkgerrors "github.com/pkg/errors"
)

// ErrorRecord is the plain, transport-safe rendering of a failure produced
// by the dispatch engine (C6). The receiving peer surfaces it verbatim as
// the rejection value; it never tries to reconstruct a live error.
type ErrorRecord struct {
	Name    string         `json:"name"`
	Message string         `json:"message"`
	Stack   string         `json:"stack,omitempty"`
	Fields  map[string]any `json:"-"`
}

// MarshalJSON flattens Fields alongside name/message/stack into a single
// "{name, message, stack, ...extra fields}" object.
func (e ErrorRecord) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"name":    e.Name,
		"message": e.Message,
	}
	if e.Stack != "" {
		out["stack"] = e.Stack
	}
	for k, v := range e.Fields {
		out[k] = v
	}
	return json.Marshal(out)
}

// fieldError is satisfied by application errors that want extra enumerable
// fields carried across the wire alongside name/message/stack.
type fieldError interface {
	error
	Fields() map[string]any
}

// Serialize converts err into a plain ErrorRecord. Non-error values pass
// through unchanged; callers must type-switch on the return to tell the
// two cases apart.
func Serialize(err any) any {
	asErr, ok := err.(error)
	if !ok {
		return err
	}
	rec := ErrorRecord{
		Name:    errorName(asErr),
		Message: asErr.Error(),
	}
	if st, ok := asErr.(interface{ StackTrace() pkgerrors.StackTrace }); ok {
		rec.Stack = fmt.Sprintf("%+v", st.StackTrace())
	}
	if fe, ok := asErr.(fieldError); ok {
		rec.Fields = fe.Fields()
	}
	return rec
}

// errorName returns the concrete type name of err, used as the record's
// "name" field the way a JS Error's constructor.name would be. Plain
// errors built with errors.New/fmt.Errorf carry no meaningful type name
// of their own (just the unexported stdlib internals errorString/
// wrapError), so those — like anonymous types — fall back to "Error",
// matching the bare "Error" a thrown plain JS Error carries.
func errorName(err error) string {
	var nr interface{ Name() string }
	if errors.As(err, &nr) {
		return nr.Name()
	}
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Name() == "" {
		return "Error"
	}
	switch t.PkgPath() {
	case "errors", "fmt":
		return "Error"
	}
	return t.Name()
}

// WithStack annotates err with a captured stack trace so Serialize can
// populate ErrorRecord.Stack, mirroring how a thrown JS Error carries one
// implicitly.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	return pkgerrors.WithStack(err)
}

// NotReadyError is raised synchronously by call issuance and Join when
// InspectReady rejects the operation.
type NotReadyError struct {
	Subclass string
	Method   string
	Hint     string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Subclass, e.Method, e.Hint)
}

// DispatchError is returned to the caller's side as an IReturn{success:
// false} payload. Kind distinguishes the dispatch failure categories.
type DispatchError struct {
	Kind    DispatchErrorKind
	Message string
}

// DispatchErrorKind enumerates the dispatch failure categories.
type DispatchErrorKind int

const (
	// ErrProviderUnset means the provider has never been installed.
	ErrProviderUnset DispatchErrorKind = iota
	// ErrProviderNil means the provider was explicitly installed as nil.
	ErrProviderNil
	// ErrAccessDenied means a path segment failed the access rules.
	ErrAccessDenied
	// ErrInvocation means the resolved function itself returned/threw an error.
	ErrInvocation
)

func (e *DispatchError) Error() string { return e.Message }

func (e *DispatchError) Name() string {
	switch e.Kind {
	case ErrProviderUnset, ErrProviderNil:
		return "ProviderError"
	case ErrAccessDenied:
		return "AccessDeniedError"
	default:
		return "DispatchError"
	}
}

// ErrConnectionClosed is the default teardown error, used to reject every
// outstanding pending call when no richer reason was supplied to the
// destructor.
var ErrConnectionClosed = errors.New("Connection has been closed.")
