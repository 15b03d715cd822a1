package websocket

import (
	"sync"

	"github.com/google/uuid"

	"doc-chat-be/internal/pkg/logger"
)

// InboundHandler receives chat messages arriving over a live connection.
type InboundHandler func(userID uuid.UUID, text string)

// Registry tracks at most one live connection per user. A second connection
// for the same user replaces the first (the old one is closed), so answers
// always go to the most recent socket.
type Registry struct {
	// UserID -> single active client
	clients map[uuid.UUID]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Dedicated Logger
	logger logger.ILogger

	// Invoked for every inbound text frame. Set once during wiring.
	handler InboundHandler
}

func NewRegistry(log logger.ILogger) *Registry {
	return &Registry{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID]*Client),
		logger:     log,
	}
}

// SetInboundHandler wires the chat pipeline in. Must be called before Run.
func (r *Registry) SetInboundHandler(h InboundHandler) {
	r.handler = h
}

func (r *Registry) Run() {
	for {
		select {
		case client := <-r.register:
			r.mu.Lock()
			if old, ok := r.clients[client.UserID]; ok {
				// Last connection wins. Evict the previous one.
				close(old.Send)
			}
			r.clients[client.UserID] = client
			r.mu.Unlock()
			r.logger.Info("Registry", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-r.unregister:
			r.mu.Lock()
			if current, ok := r.clients[client.UserID]; ok && current == client {
				delete(r.clients, client.UserID)
				close(client.Send)
				r.logger.Info("Registry", "Client unregistered", map[string]interface{}{"user_id": client.UserID})
			}
			r.mu.Unlock()
		}
	}
}

// IsOnline reports whether the user currently has a live connection.
func (r *Registry) IsOnline(userID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[userID]
	return ok
}

// Send delivers data to the user's live connection if there is one. It never
// blocks and never queues for offline users; the return value reports whether
// the message was handed to a connection.
//
// The channel send happens under the read lock. Eviction and unregister close
// the channel only under the write lock, so a send can never hit a channel
// that a concurrent reconnect just closed.
func (r *Registry) Send(userID uuid.UUID, data []byte) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.clients[userID]
	if !ok {
		return false
	}

	select {
	case client.Send <- data:
		return true
	default:
		r.logger.Warn("Registry", "Client send buffer full, dropping message", map[string]interface{}{"user_id": userID})
		return false
	}
}

func (r *Registry) dispatch(userID uuid.UUID, text string) {
	if r.handler == nil {
		r.logger.Warn("Registry", "Inbound message dropped, no handler wired", map[string]interface{}{"user_id": userID})
		return
	}
	r.handler(userID, text)
}
