// Package chatclient is the Go counterpart of the browser socket wrapper:
// one connection per namespace, automatic reconnection with backoff, and a
// listener registry that survives reconnects.
package chatclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"devdialogue/backend/internal/chathub"

	"github.com/gorilla/websocket"
)

// ErrAuthRejected is returned when the server refuses the handshake. This
// is a hard failure, distinct from a transient network drop: reconnecting
// with the same credential would fail again.
var ErrAuthRejected = errors.New("Authentication error")

// ErrNotConnected is returned by Emit when the connection is down and
// reconnection has been exhausted.
var ErrNotConnected = errors.New("not connected")

// Handler consumes the raw data of one received event.
type Handler func(data json.RawMessage)

type Option func(*Client)

// WithReconnect overrides the reconnection policy (default 5 attempts,
// 1 second base delay, growing linearly per attempt).
func WithReconnect(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.reconnectAttempts = attempts
		c.reconnectDelay = delay
	}
}

// WithConnectErrorHandler installs the callback for hard connection
// failures (handshake rejection, reconnection exhausted).
func WithConnectErrorHandler(fn func(error)) Option {
	return func(c *Client) { c.onConnectError = fn }
}

// WithReconnectHandler installs the callback invoked after a successful
// reconnect. Room membership is not restored automatically; clients rejoin
// their rooms here.
func WithReconnectHandler(fn func()) Option {
	return func(c *Client) { c.onReconnect = fn }
}

// Client is one namespace connection.
type Client struct {
	url   string
	token string

	reconnectAttempts int
	reconnectDelay    time.Duration

	onConnectError func(error)
	onReconnect    func()

	mu       sync.Mutex
	conn     *websocket.Conn
	handlers map[string][]Handler
	closed   bool
}

// Dial connects to a namespace endpoint with the given credential. A
// handshake rejection returns ErrAuthRejected immediately; no retry.
func Dial(url, token string, opts ...Option) (*Client, error) {
	c := &Client{
		url:               url,
		token:             token,
		reconnectAttempts: 5,
		reconnectDelay:    time.Second,
		handlers:          make(map[string][]Handler),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.connect(); err != nil {
		if c.onConnectError != nil {
			c.onConnectError(err)
		}
		return nil, err
	}

	go c.readLoop()
	return c, nil
}

func (c *Client) connect() error {
	header := http.Header{"Authorization": {"Bearer " + c.token}}
	conn, resp, err := websocket.DefaultDialer.Dial(c.url, header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return ErrAuthRejected
		}
		return fmt.Errorf("dial %s: %w", c.url, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return nil
}

// On registers a listener for an event. Listeners persist across
// reconnects.
func (c *Client) On(event string, fn Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], fn)
}

// Emit sends an event frame to the server.
func (c *Client) Emit(event string, payload any) error {
	env, err := chathub.NewEnvelope(event, payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.closed {
		return ErrNotConnected
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close shuts the connection down permanently; no reconnection follows.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (c *Client) readLoop() {
	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if closed {
				return
			}
			if !c.reconnect() {
				return
			}
			continue
		}

		var env chathub.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Printf("chatclient: error decoding frame: %v", err)
			continue
		}
		c.dispatch(env)
	}
}

func (c *Client) dispatch(env chathub.Envelope) {
	c.mu.Lock()
	listeners := make([]Handler, len(c.handlers[env.Event]))
	copy(listeners, c.handlers[env.Event])
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(env.Data)
	}
}

// reconnect retries the handshake with a linearly growing delay. An
// authentication rejection aborts immediately: a stale credential needs a
// fresh Dial, not a retry.
func (c *Client) reconnect() bool {
	for attempt := 1; attempt <= c.reconnectAttempts; attempt++ {
		time.Sleep(c.reconnectDelay * time.Duration(attempt))

		err := c.connect()
		if err == nil {
			if c.onReconnect != nil {
				c.onReconnect()
			}
			return true
		}
		if errors.Is(err, ErrAuthRejected) {
			if c.onConnectError != nil {
				c.onConnectError(err)
			}
			return false
		}
		log.Printf("chatclient: reconnect attempt %d failed: %v", attempt, err)
	}

	if c.onConnectError != nil {
		c.onConnectError(fmt.Errorf("reconnect exhausted after %d attempts", c.reconnectAttempts))
	}
	return false
}
