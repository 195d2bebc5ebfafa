// Copyright (C) 2019-2026, Relaylink Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package rfc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// wirePair connects two Communicators' sender hooks directly to each
// other's ReplyData, simulating a bidirectional message channel without
// any real transport.
func wirePair(t *testing.T) (a, b *Communicator) {
	t.Helper()
	a = NewCommunicator()
	b = NewCommunicator()
	a.sender = SenderFunc(func(ctx context.Context, inv *Invoke) error {
		go b.ReplyData(ctx, inv)
		return nil
	})
	b.sender = SenderFunc(func(ctx context.Context, inv *Invoke) error {
		go a.ReplyData(ctx, inv)
		return nil
	})
	return a, b
}

func TestScenarioS1EchoAcrossCommunicators(t *testing.T) {
	a, b := wirePair(t)
	b.SetProvider(map[string]any{
		"echo": Func(func(ctx context.Context, args []any) (any, error) { return args[0], nil }),
	})

	result, err := a.Path("echo").Call(context.Background(), float64(42))
	require.NoError(t, err)
	require.Equal(t, float64(42), result)
}

func TestScenarioS2NestedAcrossCommunicators(t *testing.T) {
	a, b := wirePair(t)
	b.SetProvider(map[string]any{
		"math": map[string]any{
			"add": Func(func(ctx context.Context, args []any) (any, error) {
				return args[0].(float64) + args[1].(float64), nil
			}),
		},
	})

	result, err := a.Path("math", "add").Call(context.Background(), float64(2), float64(3))
	require.NoError(t, err)
	require.Equal(t, float64(5), result)
}

func TestScenarioS3RemoteExceptionAcrossCommunicators(t *testing.T) {
	a, b := wirePair(t)
	b.SetProvider(map[string]any{
		"boom": Func(func(ctx context.Context, args []any) (any, error) { return nil, errors.New("nope") }),
	})

	_, err := a.Path("boom").Call(context.Background())
	require.Error(t, err)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	require.Equal(t, "nope", remote.Record.Message)
	require.Equal(t, "Error", remote.Record.Name)
}

func TestScenarioS4AccessViolationAcrossCommunicators(t *testing.T) {
	a, b := wirePair(t)
	b.SetProvider(map[string]any{
		"_secret": Func(func(ctx context.Context, args []any) (any, error) { return 1, nil }),
	})

	_, err := a.Path("_secret").Call(context.Background())
	require.Error(t, err)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	require.Contains(t, remote.Record.Message, "forbidden")
}

func TestScenarioS5DisconnectRejectsOutstandingAndWakesJoin(t *testing.T) {
	a := NewCommunicator()
	a.sender = SenderFunc(func(ctx context.Context, inv *Invoke) error {
		// Simulate a call that the remote never answers: drop it.
		return nil
	})

	callErrCh := make(chan error, 1)
	go func() {
		_, err := a.Path("slow").Call(context.Background())
		callErrCh <- err
	}()

	joinDone := make(chan struct{})
	go func() {
		a.Join()
		close(joinDone)
	}()

	time.Sleep(20 * time.Millisecond) // let both goroutines reach their waits

	bye := errors.New("bye")
	a.Destructor(bye)

	select {
	case err := <-callErrCh:
		require.ErrorIs(t, err, bye)
	case <-time.After(time.Second):
		t.Fatal("pending call was not rejected on destruction")
	}

	select {
	case <-joinDone:
	case <-time.After(time.Second):
		t.Fatal("join did not wake on destruction")
	}
}

func TestInvariantUidUniquenessUnderConcurrency(t *testing.T) {
	a, b := wirePair(t)
	b.SetProvider(map[string]any{
		"echo": Func(func(ctx context.Context, args []any) (any, error) { return args[0], nil }),
	})

	var mu sync.Mutex
	seen := map[uint64]bool{}
	orig := a.sender
	a.sender = SenderFunc(func(ctx context.Context, inv *Invoke) error {
		if inv.IsFunction() {
			mu.Lock()
			if seen[inv.Function.Uid] {
				mu.Unlock()
				t.Errorf("uid %d reused while outstanding", inv.Function.Uid)
				return nil
			}
			seen[inv.Function.Uid] = true
			mu.Unlock()
		}
		return orig.SendData(ctx, inv)
	})

	var wg sync.WaitGroup
	n := 100
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_, err := a.Path("echo").Call(context.Background(), float64(i))
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()
}

func TestInvariantExactlyOnceSettlement(t *testing.T) {
	a, b := wirePair(t)
	var invocations int
	var mu sync.Mutex
	b.SetProvider(map[string]any{
		"echo": Func(func(ctx context.Context, args []any) (any, error) {
			mu.Lock()
			invocations++
			mu.Unlock()
			return args[0], nil
		}),
	})

	result, err := a.Path("echo").Call(context.Background(), float64(1))
	require.NoError(t, err)
	require.Equal(t, float64(1), result)
	require.Equal(t, 1, invocations)
	require.Equal(t, 0, a.pending.len())
}

func TestInvariantRoundTripIdentity(t *testing.T) {
	a, b := wirePair(t)
	b.SetProvider(map[string]any{
		"identity": Func(func(ctx context.Context, args []any) (any, error) { return args, nil }),
	})

	args := []any{float64(1), "two", true}
	result, err := a.Path("identity").Apply(context.Background(), args)
	require.NoError(t, err)
	require.Equal(t, args, result)
}

func TestLateReturnAfterDestructionIsDroppedSilently(t *testing.T) {
	a := NewCommunicator()
	a.sender = SenderFunc(func(ctx context.Context, inv *Invoke) error { return nil })
	a.Destructor(nil)

	require.NotPanics(t, func() {
		a.ReplyData(context.Background(), NewReturn(999, true, "late"))
	})
}
