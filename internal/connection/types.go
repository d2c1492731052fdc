package connection

import (
	"context"
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected  = errors.New("not connected")
	ErrAlreadyClosed = errors.New("already closed")
)

// Handler receives the lifecycle events of a single connection.
//
// Events for one connection are delivered from a single goroutine, in order:
// OnOpen at most once, OnMessage any number of times, then OnClose exactly once.
type Handler interface {
	OnOpen()
	OnMessage(data []byte)
	OnClose(err error)
}

// Conn is one underlying connection.
type Conn interface {
	// Send writes a payload to the connection.
	Send(data []byte) error

	// Close tears the connection down. OnClose still fires.
	Close() error
}

// Transport opens connections.
type Transport interface {
	// Connect starts connecting to address and returns immediately.
	// Completion or failure is reported through h.
	Connect(ctx context.Context, address string, h Handler) Conn
}

// TransportConfig configures the WebSocket transport.
type TransportConfig struct {
	HandshakeTimeout time.Duration // Max time for the opening handshake
	WriteTimeout     time.Duration // Write deadline for sends
	Header           map[string]string
}

// DefaultTransportConfig returns sensible defaults.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
	}
}
