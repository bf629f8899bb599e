package app

import (
	"context"
	"strings"
	"time"

	"github.com/fasthttp/websocket"
)

type watcherParams struct {
	c    context.Context
	kill func()
	t    *time.Ticker
	ws   *WebSocket
}

// websocketWatcher pings the peer until the connection or the relay
// context ends.
func (rl *Relay) websocketWatcher(p watcherParams) {
	defer p.kill()
	for {
		select {
		case <-p.c.Done():
			return
		case <-p.t.C:
			if err := p.ws.WriteMessage(websocket.PingMessage,
				nil); err != nil {
				if !strings.HasSuffix(err.Error(),
					"use of closed network connection") {
					log.T.F("error writing ping: %v; closing websocket", err)
				}
				return
			}
		}
	}
}
