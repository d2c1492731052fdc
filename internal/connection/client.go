package connection

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketTransport opens gorilla/websocket connections.
type WebSocketTransport struct {
	cfg    TransportConfig
	logger *slog.Logger
}

// NewWebSocketTransport creates a new WebSocket transport.
func NewWebSocketTransport(cfg TransportConfig, logger *slog.Logger) *WebSocketTransport {
	if logger == nil {
		logger = slog.Default()
	}

	return &WebSocketTransport{
		cfg:    cfg,
		logger: logger,
	}
}

// Connect dials address in the background and reports progress to h.
func (t *WebSocketTransport) Connect(ctx context.Context, address string, h Handler) Conn {
	c := &wsConn{
		cfg:     t.cfg,
		logger:  t.logger.With("url", address),
		address: address,
		handler: h,
		done:    make(chan struct{}),
	}

	go c.run(ctx)

	return c
}

// wsConn implements Conn.
type wsConn struct {
	cfg     TransportConfig
	logger  *slog.Logger
	address string
	handler Handler

	conn *websocket.Conn
	done chan struct{}

	// Write serialization
	writeMu sync.Mutex

	// State
	mu        sync.RWMutex
	connected bool
	closed    bool

	closeOnce sync.Once
}

// run dials, then reads until the connection fails or is closed.
func (c *wsConn) run(ctx context.Context) {
	header := http.Header{}
	for k, v := range c.cfg.Header {
		header.Set(k, v)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, c.address, header)
	if err != nil {
		c.logger.Debug("websocket dial failed", "error", err)
		c.fireClose(err)
		return
	}

	c.mu.Lock()
	if c.closed {
		// Close() won the race against the dial.
		c.mu.Unlock()
		conn.Close()
		c.fireClose(ErrAlreadyClosed)
		return
	}
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	c.logger.Debug("websocket connected")
	c.handler.OnOpen()

	c.readLoop()
}

// readLoop delivers inbound frames until the read fails.
func (c *wsConn) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			c.connected = false
			c.mu.Unlock()

			// Errors after Close() are the expected teardown.
			select {
			case <-c.done:
				c.fireClose(nil)
			default:
				c.fireClose(err)
			}
			return
		}

		c.handler.OnMessage(data)
	}
}

func (c *wsConn) fireClose(err error) {
	c.closeOnce.Do(func() {
		c.handler.OnClose(err)
	})
}

// Send writes data as a text frame.
func (c *wsConn) Send(data []byte) error {
	c.mu.RLock()
	if !c.connected {
		c.mu.RUnlock()
		return ErrNotConnected
	}
	conn := c.conn
	c.mu.RUnlock()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.cfg.WriteTimeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Close gracefully closes the connection.
func (c *wsConn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.connected = false
	conn := c.conn
	c.mu.Unlock()

	close(c.done)

	// Still dialing: run() closes the socket once the dial returns.
	if conn == nil {
		return nil
	}

	c.writeMu.Lock()
	conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	c.writeMu.Unlock()

	return conn.Close()
}
