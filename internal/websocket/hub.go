package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"secure-docchat-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hub fans indexing notifications out to every connected client. There is
// no per-user addressing: the chat surface is anonymous sessions, and index
// events (document indexed, index failed, progress) concern everyone.
type Hub struct {
	// Registered clients map: SessionID -> List of Clients (multi-tab)
	clients map[uuid.UUID][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance fan-out
	rdb *redis.Client

	// Identifies this instance so it can skip its own Redis echoes
	instanceID uuid.UUID

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		instanceID: uuid.New(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SessionID]; ok {
				for i, c := range clients {
					if c == client {
						// Remove from slice
						h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.SessionID]) == 0 {
					delete(h.clients, client.SessionID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"session_id": client.SessionID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends an event notification to ALL connected clients and relays
// it to the other instances through Redis.
func (h *Hub) Broadcast(eventType string, payload interface{}) {
	// 1. Serialize
	data, err := json.Marshal(map[string]interface{}{
		"type": eventType,
		"data": payload,
	})
	if err != nil {
		h.logger.Warn("Hub", "Failed to serialize broadcast", map[string]interface{}{"type": eventType, "error": err.Error()})
		return
	}

	// 2. Send to all local clients
	h.broadcastLocal(data)

	// 3. Publish to Redis for other instances
	if h.rdb != nil {
		jsonPayload, _ := json.Marshal(map[string]interface{}{
			"origin":  h.instanceID.String(),
			"message": json.RawMessage(data),
		})
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

func (h *Hub) broadcastLocal(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.clients {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				close(client.Send)
				h.unregister <- client
			}
		}
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to "cluster_events" and re-broadcasts the
	// payload to its local clients. Redis pub/sub echoes back to the
	// publisher, so messages tagged with our own instance ID are dropped
	// to avoid double delivery.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			Origin  string          `json:"origin"`
			Message json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		if payload.Origin == h.instanceID.String() {
			continue
		}

		h.broadcastLocal(payload.Message)
	}
}
