package app

import (
	"encoding/hex"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fasthttp/websocket"
	"lukechampine.com/frand"
)

const ChallengeLength = 16

// WebSocket wraps a fasthttp/websocket connection with write locking and
// the per-connection NIP-42 state: at most one outstanding challenge and
// the pubkey the connection has authenticated as.
type WebSocket struct {
	Conn    *websocket.Conn
	Request *http.Request // original request

	mutex      sync.Mutex
	writeWait  time.Duration
	remote     atomic.Value // string
	challenge  atomic.Value // string
	authPubKey atomic.Value // string
}

// WriteMessage writes a message with a given websocket type specifier.
func (ws *WebSocket) WriteMessage(t int, b []byte) (err error) {
	ws.mutex.Lock()
	defer ws.mutex.Unlock()
	if len(b) != 0 {
		log.T.F("sending message to %s %s\n%s",
			ws.RealRemote(), ws.AuthPubKey(), string(b))
	}
	if ws.writeWait > 0 {
		chk.T(ws.Conn.SetWriteDeadline(time.Now().Add(ws.writeWait)))
	}
	return ws.Conn.WriteMessage(t, b)
}

// WriteFrame writes a text frame, skipping empty payloads (a frame builder
// returns nil when marshalling failed).
func (ws *WebSocket) WriteFrame(b []byte) (err error) {
	if len(b) == 0 {
		return
	}
	return ws.WriteMessage(websocket.TextMessage, b)
}

// NewChallenge gathers entropy for a new challenge, replacing any pending
// one; a connection holds at most one challenge at a time.
func (ws *WebSocket) NewChallenge() (challenge string) {
	challenge = hex.EncodeToString(frand.Bytes(ChallengeLength))
	ws.challenge.Store(challenge)
	return
}

// Challenge returns the outstanding challenge, empty when there is none.
func (ws *WebSocket) Challenge() (challenge string) {
	challenge, _ = ws.challenge.Load().(string)
	return
}

// ClearChallenge discards the outstanding challenge after a successful
// AUTH; a challenge is single-use.
func (ws *WebSocket) ClearChallenge() { ws.challenge.Store("") }

// AuthPubKey returns the pubkey this connection authenticated as, empty
// before a successful AUTH.
func (ws *WebSocket) AuthPubKey() (a string) {
	a, _ = ws.authPubKey.Load().(string)
	return
}

func (ws *WebSocket) SetAuthPubKey(a string) { ws.authPubKey.Store(a) }

// Authed reports whether the connection completed the NIP-42 handshake.
func (ws *WebSocket) Authed() bool { return ws.AuthPubKey() != "" }

// RealRemote returns the remote address, unwrapped from forwarding
// headers where present.
func (ws *WebSocket) RealRemote() (remote string) {
	remote, _ = ws.remote.Load().(string)
	return
}

func (ws *WebSocket) SetRealRemote(remote string) { ws.remote.Store(remote) }
