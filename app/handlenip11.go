package app

import (
	"encoding/json"
	"net/http"
)

// Info is the NIP-11 relay information document.
type Info struct {
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	PubKey        string `json:"pubkey,omitempty"`
	Contact       string `json:"contact,omitempty"`
	SupportedNIPs []int  `json:"supported_nips"`
	Software      string `json:"software"`
	Version       string `json:"version"`
	Limitation    Limits `json:"limitation"`
}

type Limits struct {
	MaxMessageLength int  `json:"max_message_length,omitempty"`
	AuthRequired     bool `json:"auth_required"`
}

func (rl *Relay) HandleNIP11(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/nostr+json")
	chk.E(json.NewEncoder(w).Encode(rl.Info))
}
