package websocket

import (
	"sync"
)

const (
	// EventTransactionsImported tells the client new transactions landed
	// and the table should be refetched.
	EventTransactionsImported = "transactions_imported"
	// EventCurrencyChanged tells the client every displayed amount was
	// re-converted into a new main currency.
	EventCurrencyChanged = "currency_changed"
)

// Event is one push notification. Amount rides on import events, Currency
// on re-conversion events.
type Event struct {
	Type     string `json:"type"`
	Amount   int    `json:"amount,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// Hub fans events out to every open socket of a user. A user may have the
// app open in several tabs; each tab is one client.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[client.userID] == nil {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[client.userID] == nil {
		return
	}
	delete(h.clients[client.userID], client)
	if len(h.clients[client.userID]) == 0 {
		delete(h.clients, client.userID)
	}
}

// Broadcast delivers event to every socket of userID. A client whose send
// buffer is full is skipped rather than blocking the upload or currency
// change that raised the event.
func (h *Hub) Broadcast(userID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- event:
		default:
		}
	}
}
