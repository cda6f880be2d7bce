package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event kinds pushed to community subscribers.
const (
	EventPostCreated  = "post.created"
	EventCommentAdded = "comment.added"
	EventReplyAdded   = "reply.added"
	EventMemberJoined = "member.joined"
	EventMemberLeft   = "member.left"
)

// Event is one community notification as it goes over the wire.
type Event struct {
	Type        string      `json:"type"`
	CommunityID uuid.UUID   `json:"communityId"`
	Payload     interface{} `json:"payload,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
}

// subscription pairs a client with the community it wants events for.
type subscription struct {
	client      *Client
	communityID uuid.UUID
}

// communityEvent is an encoded event addressed to one community's
// subscribers.
type communityEvent struct {
	communityID uuid.UUID
	payload     []byte
}

// Hub maintains the set of active clients and fans community events out to
// their subscribers.
type Hub struct {
	// Subscribers per community.
	subscribers map[uuid.UUID]map[*Client]bool

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	subscribe   chan *subscription
	unsubscribe chan *subscription
	events      chan *communityEvent

	// Mutex to protect concurrent access to the subscriber map.
	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]map[*Client]bool),
		Register:    make(chan *Client),
		Unregister:  make(chan *Client),
		subscribe:   make(chan *subscription),
		unsubscribe: make(chan *subscription),
		events:      make(chan *communityEvent, 64),
	}
}

// Run starts the hub's processing loop.
func (h *Hub) Run() {
	log.Println("WebSocket Hub started.")
	for {
		select {
		case client := <-h.Register:
			log.Printf("WebSocket client connected for user %s", client.UserID)

		case client := <-h.Unregister:
			h.mu.Lock()
			for communityID, clients := range h.subscribers {
				if clients[client] {
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.subscribers, communityID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("WebSocket client disconnected for user %s", client.UserID)

		case sub := <-h.subscribe:
			h.mu.Lock()
			if _, ok := h.subscribers[sub.communityID]; !ok {
				h.subscribers[sub.communityID] = make(map[*Client]bool)
			}
			h.subscribers[sub.communityID][sub.client] = true
			h.mu.Unlock()
			log.Printf("User %s subscribed to community %s events", sub.client.UserID, sub.communityID)

		case sub := <-h.unsubscribe:
			h.mu.Lock()
			if clients, ok := h.subscribers[sub.communityID]; ok {
				delete(clients, sub.client)
				if len(clients) == 0 {
					delete(h.subscribers, sub.communityID)
				}
			}
			h.mu.Unlock()

		case event := <-h.events:
			h.mu.RLock()
			for client := range h.subscribers[event.communityID] {
				select {
				case client.Send <- event.payload:
				default:
					log.Printf("Send buffer full for client of user %s, event dropped", client.UserID)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish queues an event for every subscriber of the community. Encoding
// failures and a saturated hub are logged, never surfaced: notifications
// are best effort and must not fail the operation that produced them.
func (h *Hub) Publish(eventType string, communityID uuid.UUID, payload interface{}) {
	event := Event{
		Type:        eventType,
		CommunityID: communityID,
		Payload:     payload,
		Timestamp:   time.Now(),
	}
	encoded, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to encode %s event for community %s: %v", eventType, communityID, err)
		return
	}

	select {
	case h.events <- &communityEvent{communityID: communityID, payload: encoded}:
	case <-time.After(1 * time.Second):
		log.Printf("Timeout queuing %s event for community %s. Hub might be busy or blocked.", eventType, communityID)
	}
}
