package websocket

import (
	"context"
	"sync"

	"ai-search-be/internal/pkg/logger"
)

const hubModule = "CHAT_HUB"

// Hub fans conversation activity out to the sockets watching it. Instances
// do not talk to each other: every instance runs its own NATS consumer and
// receives every event.
type Hub struct {
	// conversation id -> watching clients (several tabs per conversation)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex

	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[string][]*Client),
		logger:     log,
	}
}

// Run owns registration until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for id, clients := range h.clients {
				for _, c := range clients {
					close(c.Send)
				}
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ConversationID] = append(h.clients[client.ConversationID], client)
			h.mu.Unlock()
			h.logger.Debug(hubModule, "Client registered", map[string]interface{}{"conversation_id": client.ConversationID})

		case client := <-h.unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.ConversationID]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.ConversationID] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.ConversationID]) == 0 {
		delete(h.clients, client.ConversationID)
	}
}

// Notify sends data to every local client watching the conversation and
// returns how many received it. Slow clients are dropped. Sends happen under
// the read lock so remove cannot close a Send channel mid-delivery.
func (h *Hub) Notify(conversationID string, data []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, client := range h.clients[conversationID] {
		select {
		case client.Send <- data:
			delivered++
		default:
			h.logger.Warn(hubModule, "Client send buffer full, dropping client", map[string]interface{}{
				"conversation_id": conversationID,
			})
			go h.leave(client)
		}
	}
	return delivered
}

// leave unregisters the client unless the hub has stopped.
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Join registers the client unless the hub has stopped.
func (h *Hub) Join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Watchers reports how many local clients watch the conversation.
func (h *Hub) Watchers(conversationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[conversationID])
}
