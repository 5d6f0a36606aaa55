package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const channel = "farmmarket:events"

// Hub fans JSON event frames out to every connected websocket client.
// Clients filter events locally by type and by the ids in the payload, so the
// hub itself carries no subscription model. When a Redis client is provided,
// events are published to a shared channel and every instance rebroadcasts
// them to its own local clients, which keeps the push path working across
// multiple processes. The 30-second REST poll remains the reliability
// mechanism; the socket is a latency optimization only.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool

	rdb *redis.Client
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			// The socket is unauthenticated and events carry no secrets.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]bool),
		rdb:     rdb,
	}
}

// Run blocks consuming the Redis channel until ctx is cancelled. It is a
// no-op without Redis.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb == nil {
		<-ctx.Done()
		return
	}

	sub := h.rdb.Subscribe(ctx, channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcastLocal([]byte(msg.Payload))
		}
	}
}

// HandleWS upgrades the request and keeps the connection registered until the
// client goes away. Inbound frames are read and discarded.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("realtime: websocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	clientCount := len(h.clients)
	h.mu.Unlock()
	log.Info().Int("clients", clientCount).Msg("realtime: client connected")

	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

// Broadcast sends a `{type, ...payload}` frame to all clients on all
// instances. Failures are logged and never propagate to the caller — the
// push path is best-effort.
func (h *Hub) Broadcast(eventType string, payload map[string]any) {
	frame := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		frame[k] = v
	}
	frame["type"] = eventType

	data, err := json.Marshal(frame)
	if err != nil {
		log.Error().Err(err).Str("event", eventType).Msg("realtime: failed to marshal event")
		return
	}

	if h.rdb != nil {
		if err := h.rdb.Publish(context.Background(), channel, data).Err(); err != nil {
			log.Error().Err(err).Str("event", eventType).Msg("realtime: failed to publish event")
			// Fall through so local clients still get the frame.
			h.broadcastLocal(data)
		}
		return
	}

	h.broadcastLocal(data)
}

func (h *Hub) broadcastLocal(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			delete(h.clients, conn)
			_ = conn.Close()
		}
	}
}
