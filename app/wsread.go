package app

import (
	"context"
	"time"

	"github.com/fasthttp/websocket"
)

type readParams struct {
	c    context.Context
	kill func()
	ws   *WebSocket
	conn *websocket.Conn
}

// websocketReadMessages is the per-connection read loop. Each frame is
// handled to completion before the next read, so one connection's
// handlers never interleave with their own.
func (rl *Relay) websocketReadMessages(p readParams) {
	defer p.kill()
	p.conn.SetReadLimit(rl.MaxMessageSize)
	chk.E(p.conn.SetReadDeadline(time.Now().Add(rl.PongWait)))
	p.conn.SetPongHandler(func(string) (err error) {
		err = p.conn.SetReadDeadline(time.Now().Add(rl.PongWait))
		chk.E(err)
		return
	})
	for _, onConnect := range rl.OnConnect {
		onConnect(p.ws)
	}
	for {
		typ, message, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseNormalClosure,    // 1000
				websocket.CloseGoingAway,        // 1001
				websocket.CloseNoStatusReceived, // 1005
				websocket.CloseAbnormalClosure,  // 1006
			) {
				log.T.F("unexpected close error from %s: %v",
					p.ws.RealRemote(), err)
			}
			return
		}
		if typ == websocket.PingMessage {
			chk.E(p.ws.WriteMessage(websocket.PongMessage, nil))
			continue
		}
		log.T.F("receiving message from %s %s: %s",
			p.ws.RealRemote(), p.ws.AuthPubKey(), string(message))
		rl.wsProcessMessage(p.ws, message)
	}
}
