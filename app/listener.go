package app

import (
	"github.com/nbd-wtf/go-nostr"
)

// Listener is one registered subscription: the owning connection and the
// filters it declared. The registry is keyed relay-wide by subscription
// id; a REQ reusing an id replaces the earlier registration.
type Listener struct {
	ws      *WebSocket
	filters nostr.Filters
}

func (rl *Relay) SetListener(id string, ws *WebSocket, ff nostr.Filters) {
	rl.listeners.Store(id, &Listener{ws: ws, filters: ff})
}

// RemoveListenerId removes a specific subscription id; no further
// delivery occurs for it.
func (rl *Relay) RemoveListenerId(id string) {
	rl.listeners.Delete(id)
}

// RemoveListener removes every subscription owned by a websocket, called
// at connection teardown.
func (rl *Relay) RemoveListener(ws *WebSocket) {
	rl.listeners.Range(func(id string, l *Listener) bool {
		if l.ws == ws {
			rl.listeners.Delete(id)
		}
		return true
	})
}

// GetListeningFilters returns the distinct filters of all currently
// registered subscriptions.
func (rl *Relay) GetListeningFilters() (respFilters nostr.Filters) {
	respFilters = make(nostr.Filters, 0, 8)
	rl.listeners.Range(func(_ string, l *Listener) bool {
		for _, f := range l.filters {
			for i := range respFilters {
				if nostr.FilterEqual(f, respFilters[i]) {
					goto next
				}
			}
			respFilters = append(respFilters, f)
		next:
			continue
		}
		return true
	})
	return
}
