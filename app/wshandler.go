package app

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/sebest/xff"
)

// HandleWebsocket upgrades the request and runs the connection: one
// goroutine reads and dispatches frames run-to-completion, another keeps
// the connection alive with pings. Teardown releases the connection's
// subscriptions.
func (rl *Relay) HandleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := rl.upgrader.Upgrade(w, r, nil)
	if chk.E(err) {
		log.E.F("failed to upgrade websocket: %v", err)
		return
	}
	rl.clients.Store(conn, struct{}{})
	ticker := time.NewTicker(rl.PingPeriod)

	ws := &WebSocket{Conn: conn, Request: r, writeWait: rl.WriteWait}
	ws.SetRealRemote(xff.GetRemoteAddr(r))
	log.T.Ln("inbound connection from", ws.RealRemote())

	c, cancel := context.WithCancel(rl.Ctx)
	var once sync.Once
	kill := func() {
		once.Do(func() {
			log.T.Ln("disconnecting websocket", ws.RealRemote())
			for _, onDisconnect := range rl.OnDisconnect {
				onDisconnect(ws)
			}
			ticker.Stop()
			cancel()
			if _, ok := rl.clients.LoadAndDelete(conn); ok {
				chk.T(conn.Close())
			}
			rl.RemoveListener(ws)
		})
	}
	go rl.websocketReadMessages(readParams{c, kill, ws, conn})
	go rl.websocketWatcher(watcherParams{c, kill, ticker, ws})
}
