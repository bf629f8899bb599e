package app

import (
	"encoding/json"

	"github.com/nbd-wtf/go-nostr"
)

// wsProcessMessage parses one inbound frame and dispatches it. The
// malformed-input contract distinguishes three cases: input that is not
// JSON, input that is JSON but matches no known message shape, and a
// recognized label missing its params. Nothing here is fatal to the
// connection.
func (rl *Relay) wsProcessMessage(ws *WebSocket, msg []byte) {
	if len(msg) == 0 {
		log.T.Ln("empty message, probably dropped connection")
		return
	}
	var frame []json.RawMessage
	if err := json.Unmarshal(msg, &frame); err != nil {
		if !json.Valid(msg) {
			chk.E(ws.WriteFrame(noticeTransportFrame(noticeUnparseable)))
		} else {
			// valid JSON, just not an array
			chk.E(ws.WriteFrame(noticeTransportFrame(noticeUnhandled)))
		}
		return
	}
	if len(frame) == 0 {
		chk.E(ws.WriteFrame(noticeTransportFrame(noticeUnhandled)))
		return
	}
	var label string
	if err := json.Unmarshal(frame[0], &label); err != nil {
		chk.E(ws.WriteFrame(noticeTransportFrame(noticeUnhandled)))
		return
	}
	switch label {
	case "EVENT":
		if len(frame) < 2 {
			chk.E(ws.WriteFrame(noticeMissingParamsFrame(label)))
			return
		}
		ev := &nostr.Event{}
		if err := json.Unmarshal(frame[1], ev); err != nil {
			chk.E(ws.WriteFrame(noticeTransportFrame(noticeUnhandled)))
			return
		}
		rl.processEvent(ws, ev)
	case "REQ":
		// a REQ carries a subscription id and at least one filter
		if len(frame) < 3 {
			chk.E(ws.WriteFrame(noticeMissingParamsFrame(label)))
			return
		}
		var subID string
		if err := json.Unmarshal(frame[1], &subID); err != nil {
			chk.E(ws.WriteFrame(noticeTransportFrame(noticeUnhandled)))
			return
		}
		ff := make(nostr.Filters, 0, len(frame)-2)
		for _, raw := range frame[2:] {
			var f nostr.Filter
			if err := json.Unmarshal(raw, &f); err != nil {
				chk.E(ws.WriteFrame(noticeTransportFrame(noticeUnhandled)))
				return
			}
			ff = append(ff, f)
		}
		rl.processReq(ws, subID, ff)
	case "CLOSE":
		if len(frame) < 2 {
			chk.E(ws.WriteFrame(noticeMissingParamsFrame(label)))
			return
		}
		var subID string
		if err := json.Unmarshal(frame[1], &subID); err != nil {
			chk.E(ws.WriteFrame(noticeTransportFrame(noticeUnhandled)))
			return
		}
		// silent removal, no acknowledgement beyond stopping delivery
		rl.RemoveListenerId(subID)
	case "AUTH":
		if len(frame) < 2 {
			chk.E(ws.WriteFrame(noticeMissingParamsFrame(label)))
			return
		}
		ev := &nostr.Event{}
		if err := json.Unmarshal(frame[1], ev); err != nil {
			chk.E(ws.WriteFrame(noticeTransportFrame(noticeUnhandled)))
			return
		}
		rl.processAuth(ws, ev)
	default:
		chk.E(ws.WriteFrame(noticeTransportFrame(noticeUnhandled)))
	}
}
