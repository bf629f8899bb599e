package app

import (
	"github.com/nbd-wtf/go-nostr"
)

// processReq services a REQ: when authentication is required and not yet
// done the only answer is the AUTH challenge and the client is expected
// to resubmit. Otherwise the cache is replayed in insertion order, each
// filter capped at its limit most-recent matches, terminated by EOSE, and
// the subscription registered for live traffic. The limit has no effect
// on live fan-out.
func (rl *Relay) processReq(ws *WebSocket, subID string, ff nostr.Filters) {
	if rl.opts.AuthRequired && !ws.Authed() {
		rl.RequestAuth(ws)
		return
	}
	cache := rl.Cache()
	send := make(map[int]struct{})
	for i := range ff {
		for _, idx := range matchIndices(cache, &ff[i]) {
			send[idx] = struct{}{}
		}
	}
	for i, ev := range cache {
		if _, ok := send[i]; ok {
			chk.E(ws.WriteFrame(eventFrame(subID, ev)))
		}
	}
	chk.E(ws.WriteFrame(eoseFrame(subID)))
	rl.SetListener(subID, ws, ff)
}

// matchIndices returns the cache indices whose events match the filter,
// in insertion order, keeping only the limit most-recent when a limit is
// declared.
func matchIndices(cache []*nostr.Event, f *nostr.Filter) (idxs []int) {
	for i, ev := range cache {
		if f.Matches(ev) {
			idxs = append(idxs, i)
		}
	}
	if f.Limit > 0 && len(idxs) > f.Limit {
		idxs = idxs[len(idxs)-f.Limit:]
	}
	return
}
