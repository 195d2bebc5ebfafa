// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package jsonhttp is a reference rfc.Connector pair over HTTP long-poll.
// It uses both halves of the gorilla/rpc dependency: the reflection-based
// server (github.com/gorilla/rpc/v2) dispatches two typed RPC methods, and
// the JSON-RPC 2.0 client codec (github.com/gorilla/rpc/v2/json2) encodes
// and decodes them on both ends.
//
// HTTP is a request/response protocol, so a single POST cannot carry a
// server-initiated call. The pair here splits the Invoke stream in two:
// the client POSTs its own outbound Invokes to RPCService.Invoke, and
// long-polls RPCService.Poll to receive Invokes the server has queued for
// it (outbound calls issued by the server's own Driver, or replies to
// calls the client made).
package jsonhttp

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/relaylink/rfc"
)

// InvokeArgs/InvokeReply and PollArgs/PollReply are the typed RPC
// parameter shapes github.com/gorilla/rpc/v2's reflection-based Server
// requires: every registered method must take exactly
// (*http.Request, *Args, *Reply) error.
type InvokeArgs struct {
	Invoke json.RawMessage `json:"invoke"`
}

type InvokeReply struct {
	OK bool `json:"ok"`
}

type PollArgs struct {
	TimeoutMS int `json:"timeoutMs"`
}

type PollReply struct {
	Invoke json.RawMessage `json:"invoke,omitempty"`
}

// DefaultPollTimeout bounds how long a long-poll request blocks server
// side when the client supplies no timeout of its own.
const DefaultPollTimeout = 25 * time.Second

// rpcService is the receiver github.com/gorilla/rpc/v2 registers by
// reflection; its exported methods become the two JSON-RPC 2.0 methods
// "RPCService.Invoke" and "RPCService.Poll".
type rpcService struct {
	conn *ServerConnector
}

func (s *rpcService) Invoke(r *http.Request, args *InvokeArgs, reply *InvokeReply) error {
	var inv rfc.Invoke
	if err := json.Unmarshal(args.Invoke, &inv); err != nil {
		return err
	}
	s.conn.ReplyData(r.Context(), &inv)
	reply.OK = true
	return nil
}

func (s *rpcService) Poll(r *http.Request, args *PollArgs, reply *PollReply) error {
	timeout := time.Duration(args.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}
	select {
	case inv := <-s.conn.outbox:
		b, err := json.Marshal(inv)
		if err != nil {
			return err
		}
		reply.Invoke = b
	case <-r.Context().Done():
	case <-time.After(timeout):
	}
	return nil
}
