// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/rpc/v2/json2"

	"github.com/relaylink/rfc"
)

// ClientConnector is the client side of the jsonhttp pair. It POSTs its
// own outbound Invokes and runs a background long-poll loop to receive
// ones the server queued for it.
type ClientConnector struct {
	*rfc.Connector

	httpClient *http.Client
	endpoint   string
	pollEvery  time.Duration
	stopped    atomic.Bool
	done       chan struct{}
}

// DialOption configures a ClientConnector.
type DialOption func(*ClientConnector)

// WithHTTPClient overrides the *http.Client used for both POST and poll
// requests. Defaults to a client with keep-alives disabled, avoiding EOF
// errors under connection reuse in complex process hierarchies.
func WithHTTPClient(c *http.Client) DialOption {
	return func(cc *ClientConnector) { cc.httpClient = c }
}

// WithPollInterval sets the delay after each completed long-poll request
// before the next one starts. Defaults to zero (poll again immediately).
func WithPollInterval(d time.Duration) DialOption {
	return func(cc *ClientConnector) { cc.pollEvery = d }
}

// Dial builds a ClientConnector talking to endpoint (e.g.
// "http://host:port/rfc") and starts its background poll loop.
func Dial(endpoint string, opts ...DialOption) *ClientConnector {
	c := &ClientConnector{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout:   DefaultPollTimeout + 10*time.Second,
			Transport: &http.Transport{DisableKeepAlives: true},
		},
		done: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Connector = rfc.NewConnector("jsonhttp.ClientConnector",
		rfc.WithCommunicatorOptions(rfc.WithSender(rfc.SenderFunc(c.send))))
	c.SetState(rfc.StateOpen)
	go c.pollLoop()
	return c
}

func (c *ClientConnector) send(ctx context.Context, inv *rfc.Invoke) error {
	_, err := c.call(ctx, "RPCService.Invoke", InvokeArgs{Invoke: mustJSON(inv)}, &InvokeReply{})
	return err
}

func (c *ClientConnector) call(ctx context.Context, method string, params, reply any) (any, error) {
	body, err := json2.EncodeClientRequest(method, params)
	if err != nil {
		return nil, fmt.Errorf("jsonhttp encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("jsonhttp build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jsonhttp do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("jsonhttp: status %d", resp.StatusCode)
	}
	if err := json2.DecodeClientResponse(resp.Body, reply); err != nil {
		return nil, fmt.Errorf("jsonhttp decode response: %w", err)
	}
	return reply, nil
}

func (c *ClientConnector) pollLoop() {
	defer close(c.done)
	ctx := context.Background()
	for !c.stopped.Load() {
		var reply PollReply
		_, err := c.call(ctx, "RPCService.Poll", PollArgs{TimeoutMS: int(DefaultPollTimeout / time.Millisecond)}, &reply)
		if err != nil {
			if c.stopped.Load() {
				return
			}
			time.Sleep(time.Second)
			continue
		}
		if len(reply.Invoke) > 0 {
			var inv rfc.Invoke
			if json.Unmarshal(reply.Invoke, &inv) == nil {
				c.ReplyData(ctx, &inv)
			}
		}
		if c.pollEvery > 0 {
			time.Sleep(c.pollEvery)
		}
	}
}

// Close stops the poll loop and tears down the Communicator.
func (c *ClientConnector) Close(err error) {
	c.stopped.Store(true)
	c.Connector.Close(err)
}

func mustJSON(v any) json.RawMessage {
	b, e := json.Marshal(v)
	if e != nil {
		return json.RawMessage("null")
	}
	return b
}
