// Package app implements a minimal self-contained nostr relay: websocket
// transport, an insertion-ordered in-memory event cache, live subscription
// fan-out and optional NIP-42 authentication. All state is owned by the
// Relay instance so any number of relays can run in one process.
package app

import (
	"context"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/Hubmakerlabs/relayr/pkg/slog"
	"github.com/fasthttp/websocket"
	"github.com/nbd-wtf/go-nostr"
	"github.com/puzpuzpuz/xsync/v2"
)

var log, chk = slog.New(os.Stderr)

var Version = "v0.0.1"
var Software = "https://github.com/Hubmakerlabs/relayr"

const (
	WriteWait       = 10 * time.Second
	PongWait        = 60 * time.Second
	PingPeriod      = 30 * time.Second
	ReadBufferSize  = 4096
	WriteBufferSize = 4096
	MaxMessageSize  = 512000
)

// Hook is a callback invoked once per connection on connect or disconnect.
type Hook func(ws *WebSocket)

// Opts is the construction-time configuration of a relay.
type Opts struct {
	// Host is the interface to bind to, 127.0.0.1 when empty.
	Host string
	// Port is the TCP port to listen on; 0 selects a random high port,
	// redrawing from Rand until an unoccupied one is found.
	Port int
	// AuthRequired makes REQ answer with a NIP-42 challenge until the
	// connection has authenticated.
	AuthRequired bool
	// Rand supplies ephemeral port candidates. Swap it out in tests to
	// script specific candidate sequences. Defaults to a frand source.
	Rand RandSource
}

type Relay struct {
	Ctx    context.Context
	Cancel context.CancelFunc

	// Info is served as the NIP-11 relay information document.
	Info *Info

	// OnConnect hooks run once for every accepted websocket, OnDisconnect
	// once at teardown.
	OnConnect    []Hook
	OnDisconnect []Hook

	opts Opts

	upgrader websocket.Upgrader

	// all connected clients, for Close
	clients *xsync.MapOf[*websocket.Conn, struct{}]

	// subscription id -> listener; the id namespace is relay-wide
	listeners *xsync.MapOf[string, *Listener]

	// insertion-ordered event cache, append-only until Close
	cacheMx sync.RWMutex
	cache   []*nostr.Event

	// listener/server handles, guarded by mx
	mx         sync.Mutex
	ln         net.Listener
	httpServer *http.Server
	closed     bool

	serveMux *http.ServeMux

	WriteWait      time.Duration
	PongWait       time.Duration
	PingPeriod     time.Duration
	MaxMessageSize int64
}

func NewRelay(opts *Opts) (rl *Relay) {
	if opts == nil {
		opts = &Opts{}
	}
	c, cancel := context.WithCancel(context.Background())
	rl = &Relay{
		Ctx:    c,
		Cancel: cancel,
		opts:   *opts,
		Info: &Info{
			Name:          "relayr",
			Software:      Software,
			Version:       Version,
			SupportedNIPs: []int{1, 11, 42},
			Limitation: Limits{
				MaxMessageLength: MaxMessageSize,
				AuthRequired:     opts.AuthRequired,
			},
		},
		upgrader: websocket.Upgrader{
			ReadBufferSize:  ReadBufferSize,
			WriteBufferSize: WriteBufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: xsync.NewTypedMapOf[*websocket.Conn,
			struct{}](PointerHasher[websocket.Conn]),
		listeners:      xsync.NewMapOf[*Listener](),
		serveMux:       &http.ServeMux{},
		WriteWait:      WriteWait,
		PongWait:       PongWait,
		PingPeriod:     PingPeriod,
		MaxMessageSize: MaxMessageSize,
	}
	return
}

// AuthRequired reports whether this relay demands NIP-42 authentication
// before servicing REQ.
func (rl *Relay) AuthRequired() bool { return rl.opts.AuthRequired }

// Store appends an event directly to the cache, bypassing the wire
// protocol and the live fan-out. It is the seeding entry point for
// collaborators and tests.
func (rl *Relay) Store(ev *nostr.Event) {
	rl.cacheMx.Lock()
	rl.cache = append(rl.cache, ev)
	rl.cacheMx.Unlock()
}

// Cache returns a copy of the stored events in insertion order.
func (rl *Relay) Cache() (evs []*nostr.Event) {
	rl.cacheMx.RLock()
	defer rl.cacheMx.RUnlock()
	evs = make([]*nostr.Event, len(rl.cache))
	copy(evs, rl.cache)
	return
}

// Subs returns a snapshot of the subscription registry, keyed by
// subscription id.
func (rl *Relay) Subs() (subs map[string]nostr.Filters) {
	subs = make(map[string]nostr.Filters)
	rl.listeners.Range(func(id string, l *Listener) bool {
		subs[id] = l.filters
		return true
	})
	return
}
