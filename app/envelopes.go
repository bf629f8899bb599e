package app

import (
	"encoding/json"

	"github.com/nbd-wtf/go-nostr"
)

// Frame builders for the server side of the wire protocol. Everything on
// the wire is a JSON array; the event and filter payloads marshal through
// go-nostr. A builder returns nil when marshalling fails, which WriteFrame
// treats as a no-op.

// Two NOTICE shapes exist and both are part of the protocol contract: the
// transport-level ones carry an empty subscription id slot, the
// missing-params one does not.
const (
	noticeUnparseable = "Unable to parse message"
	noticeUnhandled   = "Unable to handle message"
)

func marshalFrame(items ...any) (b []byte) {
	var err error
	if b, err = json.Marshal(items); chk.E(err) {
		return nil
	}
	return
}

// noticeTransportFrame covers both malformed-input cases: input that is
// not JSON at all, and input that parses but matches no known message
// shape.
func noticeTransportFrame(msg string) []byte {
	return marshalFrame("NOTICE", "", msg)
}

// noticeMissingParamsFrame answers a recognized label that arrived
// without its required parameters.
func noticeMissingParamsFrame(label string) []byte {
	return marshalFrame("NOTICE", "invalid: "+label+" message missing params")
}

func okFrame(id string, ok bool, reason string) []byte {
	return marshalFrame("OK", id, ok, reason)
}

func eoseFrame(subID string) []byte {
	return marshalFrame("EOSE", subID)
}

func eventFrame(subID string, ev *nostr.Event) []byte {
	return marshalFrame("EVENT", subID, ev)
}

func authChallengeFrame(challenge string) []byte {
	return marshalFrame("AUTH", challenge)
}
