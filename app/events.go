package app

import (
	"encoding/hex"

	"github.com/minio/sha256-simd"
	"github.com/nbd-wtf/go-nostr"
)

// KindGiftWrap is the transport kind used for private point-to-point
// delivery. Gift wraps are never cached and are fanned out only to
// subscriptions that filter on the recipient p tag.
const KindGiftWrap = 1059

// ValidateEventShape checks that the event's id is the hash of its
// canonical serialization. It is independent of the signature check so
// both can be exercised separately.
func ValidateEventShape(ev *nostr.Event) (ok bool, reason string) {
	if ev == nil {
		return false, "error: event is nil"
	}
	hash := sha256.Sum256(ev.Serialize())
	if hex.EncodeToString(hash[:]) != ev.ID {
		return false, "invalid: id is computed incorrectly"
	}
	return true, ""
}

// CheckEventSignature verifies the schnorr signature against the event's
// own id and pubkey.
func CheckEventSignature(ev *nostr.Event) (ok bool, reason string) {
	valid, err := ev.CheckSignature()
	if err != nil {
		return false, "error: failed to verify signature: " + err.Error()
	}
	if !valid {
		return false, "invalid: signature is invalid"
	}
	return true, ""
}

func (rl *Relay) processEvent(ws *WebSocket, ev *nostr.Event) {
	if ok, reason := ValidateEventShape(ev); !ok {
		log.D.F("rejecting event from %s: %s", ws.RealRemote(), reason)
		chk.E(ws.WriteFrame(okFrame(ev.ID, false, reason)))
		return
	}
	if ok, reason := CheckEventSignature(ev); !ok {
		log.D.F("rejecting event from %s: %s", ws.RealRemote(), reason)
		chk.E(ws.WriteFrame(okFrame(ev.ID, false, reason)))
		return
	}
	rl.AddEvent(ev)
	chk.E(ws.WriteFrame(okFrame(ev.ID, true, "")))
}

// AddEvent sends an event through the normal add pipeline, as if it was
// received from a websocket (validation already done). Gift wraps bypass
// the cache; everything else is appended and fanned out.
func (rl *Relay) AddEvent(ev *nostr.Event) {
	if ev.Kind != KindGiftWrap {
		rl.Store(ev)
	}
	rl.BroadcastEvent(ev)
}
