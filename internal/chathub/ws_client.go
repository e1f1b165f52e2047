package chathub

import (
	"encoding/json"
	"log"
	"time"

	"devdialogue/backend/internal/auth"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// SendBufferSize is the outbound queue per connection.
	SendBufferSize = 256
)

// WebSocketClient implements Client over a gorilla/websocket connection.
// Identity is bound once at handshake and stays immutable for the
// connection's lifetime.
type WebSocketClient struct {
	ConnID   string
	Identity auth.Identity
	Conn     *websocket.Conn
	Hub      *Hub
	Handler  EventHandler
	Send     chan Envelope
}

func (c *WebSocketClient) GetConnID() string               { return c.ConnID }
func (c *WebSocketClient) GetUserID() string               { return c.Identity.ID }
func (c *WebSocketClient) GetIdentity() auth.Identity      { return c.Identity }
func (c *WebSocketClient) GetSendChannel() chan<- Envelope { return c.Send }

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close closes the Send channel, which stops the write pump. Called by the
// hub exactly once, on unregister.
func (c *WebSocketClient) Close() {
	close(c.Send)
}

// readPump decodes inbound frames and hands them to the namespace handler.
// Handlers run on this goroutine, so one connection's events are processed
// in receipt order and a blocking persistence call delays only this
// connection.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error reading message from user %s: %v", c.Identity.ID, err)
			}
			break
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			log.Printf("error decoding frame from user %s: %v", c.Identity.ID, err)
			continue
		}

		c.Handler.HandleEvent(c, env)
	}
}

// writePump drains the Send channel into the socket and keeps the
// connection alive with pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed by the hub.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(env)
			if err != nil {
				log.Printf("error encoding frame for user %s: %v", c.Identity.ID, err)
				continue
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(data)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
