package notification

import (
	"slices"
	"sync"

	common_models "go-negotiation/internal/common/models"

	"go.uber.org/zap"
)

// Deliverer pushes a notification to whoever is connected.
type Deliverer interface {
	Deliver(n Notification) bool
}

type jsonWriter interface {
	WriteJSON(v interface{}) error
}

type client struct {
	actor common_models.Actor
	out   jsonWriter
	mu    sync.Mutex
}

func (c *client) accepts(recipient string) bool {
	if role, ok := isRoleRecipient(recipient); ok {
		return slices.Contains(c.actor.Roles, role)
	}
	return c.actor.ID == recipient
}

func (c *client) write(n Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.WriteJSON(n)
}

// Hub tracks live websocket connections.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		log:     log,
	}
}

// Register adds a connection and returns the function that removes it.
func (h *Hub) Register(actor common_models.Actor, out jsonWriter) func() {
	c := &client{actor: actor, out: out}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
	}
}

func (h *Hub) Connected() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Deliver writes n to every matching connection and reports whether at least one write succeeded.
func (h *Hub) Deliver(n Notification) bool {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		if c.accepts(n.Recipient) {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	delivered := false
	for _, c := range targets {
		if err := c.write(n); err != nil {
			h.log.Debug("websocket write failed", zap.String("actor_id", c.actor.ID), zap.Error(err))
			continue
		}
		delivered = true
	}
	return delivered
}
