package app

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"
)

// scriptedRand returns its scripted draws first and falls back to real
// entropy once the script runs out.
type scriptedRand struct {
	mx  sync.Mutex
	seq []int
}

func (s *scriptedRand) Intn(n int) int {
	s.mx.Lock()
	defer s.mx.Unlock()
	if len(s.seq) > 0 {
		v := s.seq[0]
		s.seq = s.seq[1:]
		return v % n
	}
	return frand.Intn(n)
}

func TestAccessorsBeforeStart(t *testing.T) {
	rl := NewRelay(nil)
	_, err := rl.Listener()
	require.ErrorIs(t, err, ErrNotInitialized)
	_, err = rl.URL()
	require.ErrorIs(t, err, ErrNotInitialized)
	_, err = rl.Port()
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestExplicitPortCollision(t *testing.T) {
	occupant := startTestRelay(t, nil)
	port, err := occupant.Port()
	require.NoError(t, err)

	rl := NewRelay(&Opts{Port: port})
	require.Error(t, rl.Start())

	// a failed start leaves the relay uninitialized
	_, err = rl.Listener()
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestEphemeralPortRedraw(t *testing.T) {
	occupant := startTestRelay(t, nil)
	occupied, err := occupant.Port()
	require.NoError(t, err)

	// first scripted draw lands on the occupied port and must be
	// redrawn
	rl := NewRelay(&Opts{Rand: &scriptedRand{
		seq: []int{occupied - ephemeralPortLo},
	}})
	require.NoError(t, rl.Start())
	t.Cleanup(rl.Close)

	port, err := rl.Port()
	require.NoError(t, err)
	require.NotEqual(t, occupied, port)
	require.GreaterOrEqual(t, port, ephemeralPortLo)
	require.LessOrEqual(t, port, ephemeralPortHi)
}

func TestCloseIdempotent(t *testing.T) {
	rl := startTestRelay(t, nil)
	conn := dialRaw(t, rl)
	send(t, conn, `["REQ","doomed",{}]`)
	readFrame(t, conn) // EOSE
	require.Contains(t, rl.Subs(), "doomed")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rl.Close()
		}()
	}
	wg.Wait()
	rl.Close()

	require.Empty(t, rl.Cache())
	require.Empty(t, rl.Subs())
	require.Error(t, rl.Start())
}

func TestSubscriptionLifecycle(t *testing.T) {
	rl := startTestRelay(t, nil)
	conn := dialRaw(t, rl)

	send(t, conn, `["REQ","a",{"kinds":[1]},{"kinds":[7]}]`)
	readFrame(t, conn) // EOSE
	send(t, conn, `["REQ","b",{}]`)
	readFrame(t, conn) // EOSE

	subs := rl.Subs()
	require.Len(t, subs, 2)
	require.Len(t, subs["a"], 2)
	require.Len(t, subs["b"], 1)

	// dropping the connection removes all of its subscriptions
	conn.Close()
	require.Eventually(t, func() bool {
		return len(rl.Subs()) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestConnectHooks(t *testing.T) {
	rl := NewRelay(nil)
	connected := make(chan struct{}, 1)
	disconnected := make(chan struct{}, 1)
	rl.OnConnect = append(rl.OnConnect, func(ws *WebSocket) {
		connected <- struct{}{}
	})
	rl.OnDisconnect = append(rl.OnDisconnect, func(ws *WebSocket) {
		disconnected <- struct{}{}
	})
	require.NoError(t, rl.Start())
	t.Cleanup(rl.Close)

	conn := dialRaw(t, rl)
	select {
	case <-connected:
	case <-time.After(2 * time.Second):
		t.Fatal("connect hook never fired")
	}
	conn.Close()
	select {
	case <-disconnected:
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect hook never fired")
	}
}

// TestClientRoundTrip drives the relay with the regular go-nostr client:
// publish, replay with a limit, then live delivery.
func TestClientRoundTrip(t *testing.T) {
	rl := startTestRelay(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	sk := nostr.GeneratePrivateKey()

	pub, err := nostr.RelayConnect(ctx, relayURL(t, rl))
	require.NoError(t, err)
	defer pub.Close()

	first := signedEvent(t, sk, 1, "first", nil)
	second := signedEvent(t, sk, 1, "second", nil)
	require.NoError(t, pub.Publish(ctx, *first))
	require.NoError(t, pub.Publish(ctx, *second))

	reader, err := nostr.RelayConnect(ctx, relayURL(t, rl))
	require.NoError(t, err)
	defer reader.Close()

	sub, err := reader.Subscribe(ctx, nostr.Filters{
		{Kinds: []int{1}, Limit: 1},
	})
	require.NoError(t, err)

	select {
	case ev := <-sub.Events:
		require.Equal(t, second.ID, ev.ID)
	case <-ctx.Done():
		t.Fatal("no stored event delivered")
	}
	select {
	case <-sub.EndOfStoredEvents:
	case <-ctx.Done():
		t.Fatal("no EOSE delivered")
	}

	live := signedEvent(t, sk, 1, "live", nil)
	require.NoError(t, pub.Publish(ctx, *live))
	select {
	case ev := <-sub.Events:
		require.Equal(t, live.ID, ev.ID)
	case <-ctx.Done():
		t.Fatal("no live event delivered")
	}
}
