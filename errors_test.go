// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package rfc

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSerializeErrorProducesPlainRecord(t *testing.T) {
	err := errors.New("nope")
	serialized := Serialize(err)

	rec, ok := serialized.(ErrorRecord)
	require.True(t, ok)
	require.Equal(t, "nope", rec.Message)

	data, err2 := json.Marshal(rec)
	require.NoError(t, err2)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Equal(t, "nope", raw["message"])
	require.Contains(t, raw, "name")
}

func TestSerializeNonErrorPassesThroughUnchanged(t *testing.T) {
	require.Equal(t, "just a string", Serialize("just a string"))
	require.Equal(t, 42, Serialize(42))
}

func TestSerializeDispatchErrorName(t *testing.T) {
	derr := &DispatchError{Kind: ErrAccessDenied, Message: "denied"}
	serialized := Serialize(derr)
	rec, ok := serialized.(ErrorRecord)
	require.True(t, ok)
	require.Equal(t, "AccessDeniedError", rec.Name)
	require.Equal(t, "denied", rec.Message)
}

func TestNotReadyErrorMessage(t *testing.T) {
	err := &NotReadyError{Subclass: "TestConnector", Method: "echo", Hint: "connect first."}
	require.Equal(t, "TestConnector.echo: connect first.", err.Error())
}
