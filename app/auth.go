package app

import (
	"github.com/nbd-wtf/go-nostr"
)

// RequestAuth sends the connection's NIP-42 challenge, reusing a pending
// one when it exists and minting one otherwise.
func (rl *Relay) RequestAuth(ws *WebSocket) {
	challenge := ws.Challenge()
	if challenge == "" {
		challenge = ws.NewChallenge()
	}
	log.D.Ln("requesting auth from", ws.RealRemote())
	chk.E(ws.WriteFrame(authChallengeFrame(challenge)))
}

// processAuth validates an AUTH event in strict order, each failure
// short-circuiting with its machine-checkable reason: the kind, then the
// id/signature, then the challenge tag. On success the connection is
// marked authenticated and the challenge, being single-use, is cleared.
func (rl *Relay) processAuth(ws *WebSocket, ev *nostr.Event) {
	if ev.Kind != nostr.KindClientAuthentication {
		chk.E(ws.WriteFrame(okFrame(ev.ID, false,
			"invalid: wrong auth kind")))
		return
	}
	if ok, _ := ValidateEventShape(ev); !ok {
		chk.E(ws.WriteFrame(okFrame(ev.ID, false,
			"invalid: auth failed validation")))
		return
	}
	if ok, _ := CheckEventSignature(ev); !ok {
		chk.E(ws.WriteFrame(okFrame(ev.ID, false,
			"invalid: auth failed validation")))
		return
	}
	challenge := ws.Challenge()
	tag := ev.Tags.GetFirst([]string{"challenge"})
	if challenge == "" || tag == nil || tag.Value() != challenge {
		chk.E(ws.WriteFrame(okFrame(ev.ID, false,
			"invalid: auth challenge mismatch")))
		return
	}
	log.I.Ln("user authenticated", ev.PubKey, ws.RealRemote())
	ws.SetAuthPubKey(ev.PubKey)
	ws.ClearChallenge()
	chk.E(ws.WriteFrame(okFrame(ev.ID, true, "")))
}
