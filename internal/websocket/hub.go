package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/welldanyogia/postoffice/internal/models"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeSubscribe    MessageType = "subscribe"
	MessageTypeUnsubscribe  MessageType = "unsubscribe"
	MessageTypeFolderBumped MessageType = "folder_bumped"
	MessageTypeError        MessageType = "error"
)

// WSMessage represents a WebSocket message in either direction
type WSMessage struct {
	Type           MessageType `json:"type"`
	Owner          string      `json:"owner,omitempty"`
	Folder         string      `json:"folder,omitempty"`
	ConversationID string      `json:"conversation_id,omitempty"`
	Error          string      `json:"error,omitempty"`
}

// Hub maintains the set of active clients and fans folder events out to
// the clients subscribed to that folder
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Folder subscriptions: folder row key -> set of clients
	subscriptions map[string]map[*Client]bool

	register    chan *Client
	unregister  chan *Client
	subscribe   chan *subscriptionRequest
	unsubscribe chan *subscriptionRequest
	broadcast   chan *broadcastMessage

	// done is closed when Run returns
	done chan struct{}

	mu     sync.RWMutex
	logger *slog.Logger
}

type subscriptionRequest struct {
	client *Client
	folder string
}

type broadcastMessage struct {
	folder  string
	message []byte
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		subscribe:     make(chan *subscriptionRequest),
		unsubscribe:   make(chan *subscriptionRequest),
		broadcast:     make(chan *broadcastMessage, 256),
		done:          make(chan struct{}),
		logger:        logger,
	}
}

// Run processes hub events until ctx is cancelled, then disconnects every
// client. A client's send queue is never closed; the hub closes its done
// channel instead, so late replies from a client are dropped.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.done)
				delete(h.clients, client)
			}
			h.subscriptions = make(map[string]map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client registered")
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.done)
				for folder, subscribers := range h.subscriptions {
					delete(subscribers, client)
					if len(subscribers) == 0 {
						delete(h.subscriptions, folder)
					}
				}
			}
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client unregistered")
			}

		case req := <-h.subscribe:
			h.mu.Lock()
			if _, ok := h.clients[req.client]; ok {
				if h.subscriptions[req.folder] == nil {
					h.subscriptions[req.folder] = make(map[*Client]bool)
				}
				h.subscriptions[req.folder][req.client] = true
			}
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client subscribed to folder", slog.String("folder", req.folder))
			}

		case req := <-h.unsubscribe:
			h.mu.Lock()
			if subscribers, ok := h.subscriptions[req.folder]; ok {
				delete(subscribers, req.client)
				if len(subscribers) == 0 {
					delete(h.subscriptions, req.folder)
				}
			}
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client unsubscribed from folder", slog.String("folder", req.folder))
			}

		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.subscriptions[msg.folder] {
				select {
				case client.send <- msg.message:
				default:
					// Client buffer full, skip
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribe subscribes a client to a folder
func (h *Hub) Subscribe(client *Client, key models.FolderKey) {
	select {
	case h.subscribe <- &subscriptionRequest{client: client, folder: key.RowKey()}:
	case <-h.done:
	}
}

// Unsubscribe unsubscribes a client from a folder
func (h *Hub) Unsubscribe(client *Client, key models.FolderKey) {
	select {
	case h.unsubscribe <- &subscriptionRequest{client: client, folder: key.RowKey()}:
	case <-h.done:
	}
}

// NotifyFolderBumped tells the folder's subscribers that conversationID moved
// to the top. It never blocks; events are dropped when the hub is saturated.
func (h *Hub) NotifyFolderBumped(key models.FolderKey, conversationID string) {
	msg := WSMessage{
		Type:           MessageTypeFolderBumped,
		Owner:          key.Owner,
		Folder:         key.Name,
		ConversationID: conversationID,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to marshal broadcast message", slog.Any("error", err))
		}
		return
	}

	select {
	case h.broadcast <- &broadcastMessage{folder: key.RowKey(), message: data}:
	default:
		if h.logger != nil {
			h.logger.Warn("dropped folder notification", slog.String("folder", key.RowKey()))
		}
	}
}
