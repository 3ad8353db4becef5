package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/00yuyi00/ChongYu/internal/domain"
)

const redisPubSubChannel = "messages"

// MessageEvent is a realtime notification for a newly inserted chat
// message, pushed to the receiver's open connections. Origin carries the
// publishing instance's id so that instance can drop its own Redis echo;
// without it every local message would be delivered twice.
type MessageEvent struct {
	Type    string                  `json:"type"` // always "message"
	Origin  string                  `json:"origin,omitempty"`
	Payload *domain.MessageResponse `json:"payload"`
}

// Hub fans message INSERT events out to the receiver's WebSocket clients
// and to in-process subscribers (conversation views held by this instance).
type Hub struct {
	// Registered ws clients grouped by user id
	clients map[string]map[*Client]bool

	// In-process subscribers grouped by user id
	local map[string]map[chan *MessageEvent]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan *MessageEvent

	mu          sync.RWMutex
	instanceID  string
	redisClient *redis.Client
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewHub creates a new Hub
func NewHub(redisClient *redis.Client) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[string]map[*Client]bool),
		local:       make(map[string]map[chan *MessageEvent]struct{}),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *MessageEvent, 256),
		instanceID:  uuid.NewString(),
		redisClient: redisClient,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Register adds a ws client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	// Start Redis subscriber if Redis is available
	if h.redisClient != nil {
		go h.subscribeRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.userID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.feed)
					if len(clients) == 0 {
						delete(h.clients, client.userID)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			h.deliver(event)

		case <-h.ctx.Done():
			return
		}
	}
}

// deliver pushes an event to the receiver's ws clients and local subscribers
func (h *Hub) deliver(event *MessageEvent) {
	if event.Payload == nil {
		return
	}
	receiverID := event.Payload.ReceiverID

	// Full lock: dead clients are evicted during delivery
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[receiverID]; ok {
		data, err := json.Marshal(event)
		if err == nil {
			for client := range clients {
				select {
				case client.feed <- data:
				default:
					close(client.feed)
					delete(clients, client)
				}
			}
		}
	}

	for ch := range h.local[receiverID] {
		select {
		case ch <- event:
		default:
			// Slow subscriber, drop rather than block the hub
		}
	}
}

// PublishMessage notifies the receiver of a newly inserted message,
// locally and through Redis for other instances.
func (h *Hub) PublishMessage(msg *domain.MessageResponse) {
	event := &MessageEvent{Type: "message", Origin: h.instanceID, Payload: msg}
	h.broadcast <- event

	if h.redisClient != nil {
		data, err := json.Marshal(event)
		if err == nil {
			h.redisClient.Publish(h.ctx, redisPubSubChannel, data) //nolint:errcheck
		}
	}
}

// SubscribeLocal registers an in-process feed of message events addressed
// to userID. The returned cancel func releases the subscription; after it
// returns, nothing is sent on the channel again.
func (h *Hub) SubscribeLocal(userID string) (<-chan *MessageEvent, func()) {
	ch := make(chan *MessageEvent, 64)

	h.mu.Lock()
	if h.local[userID] == nil {
		h.local[userID] = make(map[chan *MessageEvent]struct{})
	}
	h.local[userID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if subs, ok := h.local[userID]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(h.local, userID)
				}
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// decodeRemote parses a Redis pub/sub payload. Events this instance
// published are dropped: they were already broadcast locally, and a
// second delivery would duplicate them for every subscriber.
func (h *Hub) decodeRemote(payload []byte) *MessageEvent {
	var event MessageEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil
	}
	if event.Origin == h.instanceID {
		return nil
	}
	return &event
}

// subscribeRedis listens for message events from other instances
func (h *Hub) subscribeRedis() {
	pubsub := h.redisClient.Subscribe(h.ctx, redisPubSubChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if event := h.decodeRemote([]byte(msg.Payload)); event != nil {
				// Only local delivery (don't re-publish to Redis)
				h.broadcast <- event
			}
		case <-h.ctx.Done():
			return
		}
	}
}

// Stop gracefully shuts down the hub
func (h *Hub) Stop() {
	h.cancel()
}
