package notify

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	TopicCopyConfigs   = "copy_configs"
	TopicPendingTrades = "pending_trades"
	TopicPositions     = "positions"
	TopicDiscovery     = "discovery"
)

// Event is one change notification. Payload is whatever the publisher wants
// subscribers to re-render from; an empty payload means "re-fetch".
type Event struct {
	Topic   string    `json:"topic"`
	Action  string    `json:"action"`
	UserID  string    `json:"user_id,omitempty"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

type subscriber struct {
	id     string
	topics map[string]struct{}
	ch     chan Event
}

// Hub fans change events out to websocket subscribers. Publish never
// blocks: a subscriber that cannot keep up loses events, which is fine
// because every event is a re-fetch hint, not state.
type Hub struct {
	mu      sync.RWMutex
	subs    map[string]*subscriber
	logger  *zap.Logger
	dropped uint64
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   map[string]*subscriber{},
		logger: logger,
	}
}

// Subscribe registers interest in the given topics and returns the
// subscription id plus the delivery channel. An empty topic list means all
// topics.
func (h *Hub) Subscribe(topics []string, buf int) (string, <-chan Event) {
	if buf <= 0 {
		buf = 16
	}
	sub := &subscriber{
		id:     uuid.NewString(),
		topics: map[string]struct{}{},
		ch:     make(chan Event, buf),
	}
	for _, topic := range topics {
		sub.topics[topic] = struct{}{}
	}
	h.mu.Lock()
	h.subs[sub.id] = sub
	h.mu.Unlock()
	return sub.id, sub.ch
}

// Unsubscribe is unconditional and safe to call on every exit path,
// including ids that were already removed.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	h.mu.Unlock()
	if ok {
		close(sub.ch)
	}
}

func (h *Hub) Publish(evt Event) {
	if h == nil {
		return
	}
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if len(sub.topics) > 0 {
			if _, want := sub.topics[evt.Topic]; !want {
				continue
			}
		}
		select {
		case sub.ch <- evt:
		default:
			atomic.AddUint64(&h.dropped, 1)
		}
	}
}

func (h *Hub) Dropped() uint64 {
	return atomic.LoadUint64(&h.dropped)
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
