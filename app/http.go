package app

import (
	"net/http"

	"github.com/rs/cors"
)

// ServeHTTP implements http.Handler: websocket upgrades go to the message
// loop, NIP-11 requests get the information document, anything else falls
// through to the mux.
func (rl *Relay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	select {
	case <-rl.Ctx.Done():
		log.W.Ln("shutting down")
		return
	default:
	}
	if r.Header.Get("Upgrade") == "websocket" {
		rl.HandleWebsocket(w, r)
	} else if r.Header.Get("Accept") == "application/nostr+json" {
		cors.AllowAll().Handler(http.HandlerFunc(rl.HandleNIP11)).
			ServeHTTP(w, r)
	} else {
		rl.serveMux.ServeHTTP(w, r)
	}
}

// Router exposes the fallthrough mux so extra handlers can be mounted on
// the same listener.
func (rl *Relay) Router() *http.ServeMux { return rl.serveMux }
