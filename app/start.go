package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/rs/cors"
	"lukechampine.com/frand"
)

// RandSource supplies candidates for ephemeral port selection. It is an
// injection seam so tests can drive the exact candidate sequence.
type RandSource interface {
	Intn(n int) int
}

type frandSource struct{}

func (frandSource) Intn(n int) int { return frand.Intn(n) }

// IANA dynamic/private port range, used when Opts.Port is zero.
const (
	ephemeralPortLo = 49152
	ephemeralPortHi = 65535

	// maxBindAttempts bounds the ephemeral redraw loop; after this many
	// occupied candidates Start gives up with the last bind error.
	maxBindAttempts = 128
)

// ErrNotInitialized is returned by Listener, URL and Port before Start has
// succeeded.
var ErrNotInitialized = errors.New("not initialized: relay has not been started")

// Start binds the listener and begins serving websocket upgrades. With an
// explicit port a bind failure is fatal and no listener remains; with port
// zero candidates are drawn from the dynamic range and redrawn on
// collision until one binds.
func (rl *Relay) Start() (err error) {
	rl.mx.Lock()
	defer rl.mx.Unlock()
	if rl.closed {
		return errors.New("relay is closed")
	}
	if rl.ln != nil {
		return errors.New("relay is already started")
	}
	host := rl.opts.Host
	if host == "" {
		host = "127.0.0.1"
	}
	var ln net.Listener
	if rl.opts.Port != 0 {
		addr := net.JoinHostPort(host, strconv.Itoa(rl.opts.Port))
		if ln, err = net.Listen("tcp", addr); chk.E(err) {
			return
		}
	} else {
		rnd := rl.opts.Rand
		if rnd == nil {
			rnd = frandSource{}
		}
		for i := 0; i < maxBindAttempts; i++ {
			port := ephemeralPortLo + rnd.Intn(ephemeralPortHi-ephemeralPortLo+1)
			addr := net.JoinHostPort(host, strconv.Itoa(port))
			if ln, err = net.Listen("tcp", addr); err == nil {
				break
			}
			log.T.F("ephemeral port %d unavailable, redrawing: %v", port, err)
		}
		if ln == nil {
			return log.E.Err("no free ephemeral port after %d draws: %v",
				maxBindAttempts, err)
		}
	}
	rl.ln = ln
	rl.httpServer = &http.Server{
		Handler:     cors.Default().Handler(rl),
		IdleTimeout: 30 * time.Second,
	}
	log.I.F("listening on %s", ln.Addr().String())
	go func(srv *http.Server) {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			chk.E(err)
		}
	}(rl.httpServer)
	return nil
}

// Listener returns the bound listener, or ErrNotInitialized before a
// successful Start.
func (rl *Relay) Listener() (ln net.Listener, err error) {
	rl.mx.Lock()
	defer rl.mx.Unlock()
	if rl.ln == nil {
		return nil, ErrNotInitialized
	}
	return rl.ln, nil
}

// URL returns the ws:// address of the running relay.
func (rl *Relay) URL() (url string, err error) {
	var ln net.Listener
	if ln, err = rl.Listener(); err != nil {
		return
	}
	return "ws://" + ln.Addr().String(), nil
}

// Port returns the resolved TCP port of the running relay.
func (rl *Relay) Port() (port int, err error) {
	var ln net.Listener
	if ln, err = rl.Listener(); err != nil {
		return
	}
	return ln.Addr().(*net.TCPAddr).Port, nil
}

// Close stops the listener, drops every client connection and empties the
// cache and the subscription registry. It is safe to call repeatedly,
// including concurrently; later calls return once the first teardown has
// finished.
func (rl *Relay) Close() {
	rl.mx.Lock()
	defer rl.mx.Unlock()
	if rl.closed {
		return
	}
	rl.closed = true
	rl.Cancel()
	if rl.httpServer != nil {
		c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		chk.E(rl.httpServer.Shutdown(c))
		cancel()
		rl.httpServer = nil
	}
	rl.clients.Range(func(conn *websocket.Conn, _ struct{}) bool {
		chk.T(conn.WriteControl(websocket.CloseMessage, nil,
			time.Now().Add(time.Second)))
		chk.T(conn.Close())
		rl.clients.Delete(conn)
		return true
	})
	rl.listeners.Range(func(id string, _ *Listener) bool {
		rl.listeners.Delete(id)
		return true
	})
	rl.cacheMx.Lock()
	rl.cache = nil
	rl.cacheMx.Unlock()
	rl.ln = nil
}
