package websocket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// Conn is the subset of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type Client struct {
	UserID uuid.UUID
	Conn   Conn
}

type delivery struct {
	userID  uuid.UUID
	payload interface{}
}

// Hub tracks one live connection per user and pushes payloads to them.
type Hub struct {
	clients    map[uuid.UUID]Conn
	mu         sync.RWMutex
	register   chan *Client
	unregister chan *Client
	deliveries chan delivery
	done       chan struct{}
	logger     *slog.Logger
}

var _ Conn = (*websocket.Conn)(nil)

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]Conn),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliveries: make(chan delivery, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Register and Unregister are no-ops once Run has returned.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Push queues payload for userID. It drops the payload when the queue is full.
func (h *Hub) Push(userID uuid.UUID, payload interface{}) {
	select {
	case h.deliveries <- delivery{userID: userID, payload: payload}:
	default:
		h.logger.Warn("websocket delivery queue full, dropping push", "user_id", userID)
	}
}

func (h *Hub) Connected(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, conn := range h.clients {
				_ = conn.Close()
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		case client := <-h.register:
			h.logger.Debug("websocket client registered", "user_id", client.UserID)
			h.mu.Lock()
			if old, ok := h.clients[client.UserID]; ok && old != client.Conn {
				_ = old.Close()
			}
			h.clients[client.UserID] = client.Conn
			h.mu.Unlock()
		case client := <-h.unregister:
			h.logger.Debug("websocket client unregistered", "user_id", client.UserID)
			h.mu.Lock()
			if conn, ok := h.clients[client.UserID]; ok && conn == client.Conn {
				delete(h.clients, client.UserID)
			}
			h.mu.Unlock()
		case d := <-h.deliveries:
			h.mu.RLock()
			conn, ok := h.clients[d.userID]
			h.mu.RUnlock()
			if !ok {
				continue
			}
			if err := conn.WriteJSON(d.payload); err != nil {
				h.logger.Warn("error sending push to client", "user_id", d.userID, "error", err)
				_ = conn.Close()
				h.mu.Lock()
				if current, ok := h.clients[d.userID]; ok && current == conn {
					delete(h.clients, d.userID)
				}
				h.mu.Unlock()
			}
		}
	}
}
