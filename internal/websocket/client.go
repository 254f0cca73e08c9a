package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/welldanyogia/postoffice/internal/models"
	"github.com/welldanyogia/postoffice/internal/validator"
)

const (
	writeWait = 10 * time.Second

	// A peer that misses pongs for pongWait is dropped
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// Subscription requests are tiny; anything larger is a protocol error
	maxRequestSize = 512

	sendQueueSize = 256
)

// Client is one websocket subscriber. It listens for folder events on the
// rows it subscribed to and never sends message content. The hub closes
// done when it drops the client.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	logger *slog.Logger
}

// NewClient creates a client for an upgraded connection
func NewClient(hub *Hub, conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Run registers the client and serves it until the peer goes away or the
// hub shuts down
func (c *Client) Run() {
	c.hub.Register(c)
	go c.writeLoop()
	c.readLoop()
}

func (c *Client) readLoop() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxRequestSize)
	extend := func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
	_ = extend("")
	c.conn.SetPongHandler(extend)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) && c.logger != nil {
				c.logger.Warn("websocket subscriber dropped", slog.Any("error", err))
			}
			return
		}
		c.handleMessage(data)
	}
}

func (c *Client) writeLoop() {
	pings := time.NewTicker(pingPeriod)
	defer func() {
		pings.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.write(websocket.CloseMessage, nil)
			return
		case event := <-c.send:
			if err := c.write(websocket.TextMessage, event); err != nil {
				return
			}
		case <-pings.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(kind int, payload []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(kind, payload)
}

// handleMessage applies a subscribe or unsubscribe request
func (c *Client) handleMessage(data []byte) {
	var req WSMessage
	if err := json.Unmarshal(data, &req); err != nil {
		c.sendError("invalid message format")
		return
	}

	var apply func(*Client, models.FolderKey)
	switch req.Type {
	case MessageTypeSubscribe:
		apply = c.hub.Subscribe
	case MessageTypeUnsubscribe:
		apply = c.hub.Unsubscribe
	default:
		c.sendError("unknown message type")
		return
	}

	key, err := requestedFolder(req)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	apply(c, key)
}

func requestedFolder(req WSMessage) (models.FolderKey, error) {
	if err := validator.ValidateOwnerID(req.Owner); err != nil {
		return models.FolderKey{}, fmt.Errorf("owner %w", err)
	}
	if err := validator.ValidateFolderName(req.Folder); err != nil {
		return models.FolderKey{}, fmt.Errorf("folder %w", err)
	}
	return models.FolderKey{Owner: req.Owner, Name: req.Folder}, nil
}

// sendError queues an error reply; it is dropped when the queue is full or
// the hub has already let go of the client
func (c *Client) sendError(reason string) {
	data, err := json.Marshal(WSMessage{Type: MessageTypeError, Error: reason})
	if err != nil {
		return
	}
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- data:
	default:
	}
}
