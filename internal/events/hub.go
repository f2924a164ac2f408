// Package events fans record changes out to live subscribers (SSE and
// WebSocket clients).
package events

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Op is the kind of write that produced a change.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// Change describes one successful write.
type Change struct {
	ID         string    `json:"id"`
	Collection string    `json:"collection"`
	Op         Op        `json:"op"`
	RecordID   int64     `json:"recordId"`
	Record     any       `json:"record,omitempty"`
	At         time.Time `json:"at"`
}

// Name is the event name, e.g. "users.created".
func (c Change) Name() string {
	return c.Collection + "." + string(c.Op)
}

// Hub delivers published changes to every subscriber. A subscriber whose
// buffer is full misses the change; Publish never blocks.
type Hub struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
	logger *slog.Logger
}

// NewHub creates a hub with the given per-subscriber buffer size.
func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
		logger: logger,
	}
}

// Subscription is a live feed of changes. Call Close when done.
type Subscription struct {
	hub  *Hub
	ch   chan Change
	once sync.Once
}

// C returns the channel changes arrive on. It is closed by Close.
func (s *Subscription) C() <-chan Change { return s.ch }

// Close detaches the subscription from the hub.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s)
		s.hub.mu.Unlock()
		close(s.ch)
	})
}

// Subscribe registers a new subscriber.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{hub: h, ch: make(chan Change, h.buffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Subscribers reports the number of attached subscribers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish stamps the change with an id and time and delivers it.
func (h *Hub) Publish(c Change) Change {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.At.IsZero() {
		c.At = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.ch <- c:
		default:
			h.logger.Warn("dropping change for slow subscriber", "event", c.Name(), "recordId", c.RecordID)
		}
	}
	return c
}
