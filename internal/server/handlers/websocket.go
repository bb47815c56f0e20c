package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"trendpulse/internal/adapter/events"
)

// liveClient is one connected live-feed consumer.
type liveClient struct {
	conn      *websocket.Conn
	send      chan []byte
	sub       *nats.Subscription
	closeOnce sync.Once
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LiveWebSocketHandler upgrades the connection and relays trend update
// events from the bus until the client goes away.
func LiveWebSocketHandler(bus *events.Bus, logger *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn().Err(err).Msg("websocket upgrade failed")

			return
		}

		client := &liveClient{
			conn: conn,
			send: make(chan []byte, 16),
		}

		sub, err := bus.Subscribe(events.SubjectTrendUpdates, func(data []byte) {
			select {
			case client.send <- data:
			default:
				// Slow consumer: drop the update, the next one supersedes it.
			}
		})
		if err != nil {
			logger.Warn().Err(err).Msg("websocket subscription failed")
			_ = conn.Close()

			return
		}

		client.sub = sub

		go client.writePump()
		go client.readPump()

		logger.Debug().Str("remote", r.RemoteAddr).Msg("live websocket connected")
	}
}

// readPump discards inbound frames and tears the client down when the
// connection dies.
func (c *liveClient) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *liveClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})

				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *liveClient) close() {
	c.closeOnce.Do(func() {
		if c.sub != nil {
			_ = c.sub.Unsubscribe()
		}

		_ = c.conn.Close()
	})
}
