package app

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/require"
)

func startTestRelay(t *testing.T, opts *Opts) *Relay {
	t.Helper()
	rl := NewRelay(opts)
	require.NoError(t, rl.Start())
	t.Cleanup(rl.Close)
	return rl
}

func relayURL(t *testing.T, rl *Relay) string {
	t.Helper()
	url, err := rl.URL()
	require.NoError(t, err)
	return url
}

// dialRaw opens a plain websocket to the relay for driving raw frames at
// it, including deliberately malformed ones.
func dialRaw(t *testing.T, rl *Relay) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(relayURL(t, rl), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

func sendJSON(t *testing.T, conn *websocket.Conn, items ...any) {
	t.Helper()
	b, err := json.Marshal(items)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, b))
}

func readFrame(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)
	return b
}

// expectNoFrame asserts that nothing arrives within the given bounded
// wait.
func expectNoFrame(t *testing.T, conn *websocket.Conn, wait time.Duration) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(wait)))
	_, b, err := conn.ReadMessage()
	if err == nil {
		t.Fatalf("expected no frame, got %s", b)
	}
	netErr, ok := err.(net.Error)
	require.True(t, ok && netErr.Timeout(), "unexpected read error: %v", err)
}

// readElems reads one frame and splits it into its raw array elements.
func readElems(t *testing.T, conn *websocket.Conn) []json.RawMessage {
	t.Helper()
	var elems []json.RawMessage
	require.NoError(t, json.Unmarshal(readFrame(t, conn), &elems))
	return elems
}

func label(t *testing.T, elems []json.RawMessage) string {
	t.Helper()
	require.NotEmpty(t, elems)
	var s string
	require.NoError(t, json.Unmarshal(elems[0], &s))
	return s
}

// readOK reads a frame and requires it to be an OK with the given
// verdict and reason.
func readOK(t *testing.T, conn *websocket.Conn, id string, ok bool, reason string) {
	t.Helper()
	var frame []any
	require.NoError(t, json.Unmarshal(readFrame(t, conn), &frame))
	require.Len(t, frame, 4)
	require.Equal(t, "OK", frame[0])
	require.Equal(t, id, frame[1])
	require.Equal(t, ok, frame[2])
	require.Equal(t, reason, frame[3])
}

func signedEvent(t *testing.T, sk string, kind int, content string,
	tags nostr.Tags) *nostr.Event {

	t.Helper()
	if tags == nil {
		tags = nostr.Tags{}
	}
	ev := &nostr.Event{
		Kind:      kind,
		CreatedAt: nostr.Now(),
		Content:   content,
		Tags:      tags,
	}
	require.NoError(t, ev.Sign(sk))
	return ev
}
