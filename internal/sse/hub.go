package sse

import (
	"encoding/json"
	"log"
	"sync"
)

// Event is one Server-Sent Event.
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client is a connected browser session.
type Client struct {
	ID     string
	UserID string
	Events chan Event
}

// Hub tracks connected SSE clients. It is injected wherever events are
// published; there is no package-level instance.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	log.Printf("[SSE] Client registered: id=%s user=%s (total: %d)", client.ID, client.UserID, len(h.clients))
}

// Unregister removes a client and closes its event channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		log.Printf("[SSE] Client unregistered: id=%s (total: %d)", clientID, len(h.clients))
	}
}

// Broadcast sends an event to every connected client. Slow clients are
// skipped rather than blocking the publisher.
func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Events <- event:
		default:
			log.Printf("[SSE] Client %s buffer full, skipping event", client.ID)
		}
	}
}

// SendToUser sends an event to every session of one user.
func (h *Hub) SendToUser(userID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.UserID == userID {
			select {
			case client.Events <- event:
			default:
				log.Printf("[SSE] Client %s buffer full, skipping user event", client.ID)
			}
		}
	}
}

// PublishNotification pushes a feed entry to one user's sessions.
func (h *Hub) PublishNotification(userID, notificationID, message, link string) {
	data, _ := json.Marshal(map[string]string{
		"id":      notificationID,
		"message": message,
		"link":    link,
	})
	h.SendToUser(userID, Event{
		EventType: "notification",
		Data:      string(data),
	})
}

// PublishDocumentUpdate tells every connected client that a workflow
// document changed, so list views can refresh.
func (h *Hub) PublishDocumentUpdate(docType, docID, action string) {
	data, _ := json.Marshal(map[string]string{
		"doc_type": docType,
		"doc_id":   docID,
		"action":   action,
	})
	h.Broadcast(Event{
		EventType: "document_update",
		Data:      string(data),
	})
}
