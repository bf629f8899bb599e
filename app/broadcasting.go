package app

import (
	"github.com/nbd-wtf/go-nostr"
)

// BroadcastEvent emits an event to every registered subscription whose
// filters match. Gift wraps are narrowed further: the subscription must
// filter on the recipient p tag, matching on kind alone never delivers
// them.
func (rl *Relay) BroadcastEvent(ev *nostr.Event) {
	rl.listeners.Range(func(id string, l *Listener) bool {
		if !matchesForDelivery(l.filters, ev) {
			return true
		}
		log.D.F("sending event %s (kind %d) to subscription %s %s",
			ev.ID, ev.Kind, id, l.ws.RealRemote())
		chk.E(l.ws.WriteFrame(eventFrame(id, ev)))
		return true
	})
}

func matchesForDelivery(ff nostr.Filters, ev *nostr.Event) bool {
	for _, f := range ff {
		if ev.Kind == KindGiftWrap {
			if wrapTargeted(f, ev) {
				return true
			}
			continue
		}
		if f.Matches(ev) {
			return true
		}
	}
	return false
}

// wrapTargeted reports whether a filter explicitly names one of the gift
// wrap's recipients. The filter must both declare a p tag-filter and
// match the event in full, so the declared recipient set necessarily
// intersects the event's own p tags.
func wrapTargeted(f nostr.Filter, ev *nostr.Event) bool {
	return len(f.Tags["p"]) > 0 && f.Matches(ev)
}
