// Package wstransport carries the RDPGFX wire protocol over a WebSocket,
// reconnecting with exponential backoff and forwarding inbound binary
// frames to the compositor's single-consumer dispatch queue.
package wstransport

import (
	"crypto/tls"
	"fmt"
	"io"
	"math/rand"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/qxsch/freerdp-web-sub001/internal/logging"
)

var log = logging.L("wstransport")

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	maxMessageSize = 8 * 1024 * 1024
	backoffFactor  = 2.0
	jitterFactor   = 0.3
)

// Config holds the WebSocket transport's connection parameters, sourced
// from the daemon's config file.
type Config struct {
	ServerURL             string
	ClientID              string
	AuthToken             string
	TLSInsecureSkipVerify bool
	ReconnectMinBackoff   time.Duration
	ReconnectMaxBackoff   time.Duration
	PingInterval          time.Duration
	SendQueueSize         int
}

// Client manages the WebSocket connection carrying the graphics pipeline
// wire protocol. Inbound frames are delivered on the channel returned by
// Inbound; outbound frames (FrameAck PDUs) are queued with Send.
type Client struct {
	config *Config

	conn   *websocket.Conn
	connMu sync.RWMutex

	done      chan struct{}
	sendChan  chan []byte
	inbound   chan []byte
	stopOnce  sync.Once
	isRunning bool
	runningMu sync.RWMutex
}

// New creates a transport client for cfg. Inbound wire messages are
// delivered on a channel of capacity cfg.SendQueueSize (or 1 if unset);
// callers must drain Inbound() promptly so backpressure surfaces on the
// WebSocket connection rather than unbounded buffering.
func New(cfg *Config) *Client {
	queueSize := cfg.SendQueueSize
	if queueSize < 1 {
		queueSize = 1
	}
	return &Client{
		config:   cfg,
		done:     make(chan struct{}),
		sendChan: make(chan []byte, queueSize),
		inbound:  make(chan []byte, queueSize),
	}
}

// Inbound returns the channel of raw binary wire messages received from
// the server. Closed when the client stops.
func (c *Client) Inbound() <-chan []byte {
	return c.inbound
}

// Recv implements compositor.Transport: it blocks for the next inbound wire
// message, returning io.EOF once the client has stopped and drained.
func (c *Client) Recv() ([]byte, error) {
	msg, ok := <-c.inbound
	if !ok {
		return nil, io.EOF
	}
	return msg, nil
}

// SendAck implements compositor.Transport: it queues a FrameAck PDU for
// transmission, matching the Send semantics below.
func (c *Client) SendAck(frame []byte) error {
	return c.Send(frame)
}

// Start begins the reconnect loop. Blocks the calling goroutine until Stop
// is called; run it in its own goroutine.
func (c *Client) Start() {
	c.runningMu.Lock()
	if c.isRunning {
		c.runningMu.Unlock()
		return
	}
	c.isRunning = true
	c.runningMu.Unlock()

	c.reconnectLoop()
	close(c.inbound)
}

// Stop gracefully closes the connection.
func (c *Client) Stop() {
	c.stopOnce.Do(func() {
		c.runningMu.Lock()
		c.isRunning = false
		c.runningMu.Unlock()

		close(c.done)

		c.connMu.Lock()
		if c.conn != nil {
			c.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait),
			)
			c.conn.Close()
			c.conn = nil
		}
		c.connMu.Unlock()

		log.Info("client stopped")
	})
}

// Send queues a binary frame (a FrameAck PDU) for transmission.
// Returns an error if the client is stopped or the send queue is full.
func (c *Client) Send(frame []byte) error {
	select {
	case c.sendChan <- frame:
		return nil
	case <-c.done:
		return fmt.Errorf("wstransport: client is stopped")
	default:
		return fmt.Errorf("wstransport: send queue full")
	}
}

func (c *Client) connect() error {
	wsURL, err := c.buildWSURL()
	if err != nil {
		return fmt.Errorf("failed to build websocket url: %w", err)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		TLSClientConfig:  &tls.Config{InsecureSkipVerify: c.config.TLSInsecureSkipVerify},
	}
	conn, _, err := dialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	conn.SetReadLimit(maxMessageSize)
	log.Info("connected", "server", c.config.ServerURL)
	return nil
}

func (c *Client) buildWSURL() (string, error) {
	serverURL, err := url.Parse(c.config.ServerURL)
	if err != nil {
		return "", err
	}

	switch serverURL.Scheme {
	case "https":
		serverURL.Scheme = "wss"
	case "http":
		serverURL.Scheme = "ws"
	}

	serverURL.Path = fmt.Sprintf("/api/v1/gfx-ws/%s/ws", c.config.ClientID)
	q := serverURL.Query()
	q.Set("token", c.config.AuthToken)
	serverURL.RawQuery = q.Encode()

	return serverURL.String(), nil
}

func (c *Client) reconnectLoop() {
	minBackoff := c.config.ReconnectMinBackoff
	if minBackoff <= 0 {
		minBackoff = 250 * time.Millisecond
	}
	maxBackoff := c.config.ReconnectMaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = 30 * time.Second
	}
	backoff := minBackoff

	for {
		select {
		case <-c.done:
			return
		default:
		}

		if err := c.connect(); err != nil {
			log.Warn("connection failed", "error", err)

			jitter := time.Duration(float64(backoff) * jitterFactor * (rand.Float64()*2 - 1))
			sleep := backoff + jitter
			if sleep < 0 {
				sleep = backoff
			}

			log.Info("retrying", "delay", sleep)
			select {
			case <-c.done:
				return
			case <-time.After(sleep):
			}

			backoff = time.Duration(float64(backoff) * backoffFactor)
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		backoff = minBackoff

		done := make(chan struct{})
		go c.writePump(done)
		c.readPump()
		close(done)

		c.runningMu.RLock()
		running := c.isRunning
		c.runningMu.RUnlock()
		if !running {
			return
		}
	}
}

func (c *Client) readPump() {
	c.connMu.RLock()
	conn := c.conn
	c.connMu.RUnlock()

	if conn == nil {
		return
	}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("read error", "error", err)
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		select {
		case c.inbound <- message:
		case <-c.done:
			return
		}
	}
}

func (c *Client) writePump(done chan struct{}) {
	pingPeriod := c.config.PingInterval
	if pingPeriod <= 0 {
		pingPeriod = 30 * time.Second
	}
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-c.done:
			return

		case frame := <-c.sendChan:
			c.connMu.RLock()
			conn := c.conn
			c.connMu.RUnlock()

			if conn == nil {
				continue
			}

			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				log.Warn("write error", "error", err)
				return
			}

		case <-ticker.C:
			c.connMu.RLock()
			conn := c.conn
			c.connMu.RUnlock()

			if conn == nil {
				continue
			}

			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
