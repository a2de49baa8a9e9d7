package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// writeWait is the deadline for a single frame write.
	writeWait = 10 * time.Second
	// pongWait is the read deadline; the peer must answer pings within it.
	pongWait = 60 * time.Second
	// pingPeriod stays under pongWait so a healthy peer never times out.
	pingPeriod = 54 * time.Second

	maxMessageSize = 4096
	sendBufferSize = 256
)

// client is one websocket connection. playerID and roomID are empty
// until HELLO succeeds and are only written from the read loop.
type client struct {
	engine *Engine
	conn   *websocket.Conn
	send   chan []byte

	playerID string
	roomID   string

	closeOnce sync.Once
	closeMsg  []byte
}

func newClient(engine *Engine, conn *websocket.Conn) *client {
	return &client{
		engine: engine,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}
}

// enqueue hands a frame to the write loop. A full buffer drops the
// frame; the client recovers via SYNC_REQUEST.
func (c *client) enqueue(data []byte) {
	select {
	case c.send <- data:
	default:
		c.engine.log.Warn("send buffer full, dropping frame",
			zap.String("room_id", c.roomID),
			zap.String("player_id", c.playerID))
	}
}

// shutdown closes the send channel exactly once, which ends writePump
// after it drains any queued frames.
func (c *client) shutdown() {
	c.closeOnce.Do(func() { close(c.send) })
}

// closeWith schedules a close frame with the given code. Frames already
// queued are flushed first.
func (c *client) closeWith(code int, reason string) {
	c.closeOnce.Do(func() {
		c.closeMsg = websocket.FormatCloseMessage(code, reason)
		close(c.send)
	})
}

func (c *client) readPump() {
	defer func() {
		c.engine.dropClient(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.engine.log.Warn("websocket read failed",
					zap.String("player_id", c.playerID), zap.Error(err))
			}
			return
		}
		c.engine.handleFrame(c, data)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, c.closeMsg)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

			// Drain whatever queued up while we were writing.
			for i := 0; i < len(c.send); i++ {
				data, ok := <-c.send
				if !ok {
					return
				}
				if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
					return
				}
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
