package realtime

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Hub relays broadcast frames from Redis pub/sub to locally connected
// websocket clients. A user's topics are subscribed while at least one
// of their connections is registered.
type Hub struct {
	rdb        *redis.Client
	mu         sync.RWMutex
	userConns  map[string]map[*Client]bool
	subs       map[string]*redis.PubSub
	register   chan *Client
	unregister chan *Client
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		rdb:        rdb,
		userConns:  make(map[string]map[*Client]bool),
		subs:       make(map[string]*redis.PubSub),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.userConns[client.UserID] == nil {
				h.userConns[client.UserID] = make(map[*Client]bool)
			}
			h.userConns[client.UserID][client] = true
			if _, subscribed := h.subs[client.UserID]; !subscribed {
				pubsub := h.rdb.Subscribe(context.Background(),
					UserTopic(client.UserID), InboxTopic(client.UserID))
				h.subs[client.UserID] = pubsub
				go h.relay(client.UserID, pubsub)
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if conns := h.userConns[client.UserID]; conns[client] {
				delete(conns, client)
				close(client.Send)
				if len(conns) == 0 {
					delete(h.userConns, client.UserID)
					if pubsub := h.subs[client.UserID]; pubsub != nil {
						pubsub.Close()
						delete(h.subs, client.UserID)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// relay pumps frames from the user's Redis subscription to every local
// connection. Exits when the subscription is closed.
func (h *Hub) relay(userID string, pubsub *redis.PubSub) {
	for msg := range pubsub.Channel() {
		h.sendToUser(userID, []byte(msg.Payload))
	}
}

func (h *Hub) sendToUser(userID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.userConns[userID] {
		select {
		case client.Send <- data:
		default:
			// Slow consumer; drop the frame. Delivery is best-effort.
		}
	}
}
