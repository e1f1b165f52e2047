package chathub

import "devdialogue/backend/internal/auth"

// Client is the interface for one live connection in a namespace. It
// abstracts the underlying transport so the hub and tests can manage
// connections uniformly.
type Client interface {
	// GetConnID returns the unique identifier of this connection.
	GetConnID() string
	// GetUserID returns the authenticated user id bound at handshake.
	GetUserID() string
	// GetIdentity returns the full authenticated identity snapshot.
	GetIdentity() auth.Identity

	// GetSendChannel returns the channel the hub writes outbound frames to.
	GetSendChannel() chan<- Envelope

	// Run starts the connection's read and write pumps.
	Run()
	// Close shuts down the outbound channel, stopping the write pump.
	Close()
}

// EventHandler consumes decoded frames from a connection's read pump.
// Handlers run on the connection's own goroutine: events from one connection
// are processed in receipt order, and a blocking call (persistence) delays
// only that connection.
type EventHandler interface {
	HandleEvent(c Client, env Envelope)
}
