package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBuffer is the channel capacity handed to each subscriber
const DefaultBuffer = 64

// Change announces that a storage key was written or deleted. Receivers re-read the key.
type Change struct {
	Key       string    `json:"key"`
	Deleted   bool      `json:"deleted,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher is what storage writers need from the hub
type Publisher interface {
	Publish(change Change)
}

// listener is one subscription. A nil match accepts every key.
type listener struct {
	ch    chan Change
	match func(key string) bool
}

// Hub fans storage changes out to every subscriber
type Hub struct {
	mu        sync.RWMutex
	listeners map[int]listener
	nextID    int
	closed    bool

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		listeners: make(map[int]listener),
		logger:    logger,
	}
}

// Subscribe registers a listener for every key and returns its channel and a cancel
// func. The channel is closed on cancel or when the hub closes.
func (h *Hub) Subscribe() (<-chan Change, func()) {
	return h.SubscribeKeys(nil)
}

// SubscribeKeys is Subscribe restricted to keys accepted by match. Changes to other
// keys never take space in the listener's buffer.
func (h *Hub) SubscribeKeys(match func(key string) bool) (<-chan Change, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Change, DefaultBuffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.listeners[id] = listener{ch: ch, match: match}
	h.logger.Debug().Int("listenerID", id).Msg("Added change listener")

	var once sync.Once
	return ch, func() {
		once.Do(func() { h.remove(id) })
	}
}

func (h *Hub) remove(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if l, ok := h.listeners[id]; ok {
		delete(h.listeners, id)
		close(l.ch)
		h.logger.Debug().Int("listenerID", id).Msg("Removed change listener")
	}
}

// Publish delivers the change to every listener without blocking. A listener whose
// buffer is full misses the change.
func (h *Hub) Publish(change Change) {
	if change.Timestamp.IsZero() {
		change.Timestamp = time.Now().UTC()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, l := range h.listeners {
		if l.match != nil && !l.match(change.Key) {
			continue
		}
		select {
		case l.ch <- change:
		default:
			h.logger.Warn().Int("listenerID", id).Str("key", change.Key).Msg("Skipped slow change listener")
		}
	}
}

// ListenerCount returns the number of registered listeners
func (h *Hub) ListenerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Close closes every listener channel. Later subscribers get a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, l := range h.listeners {
		delete(h.listeners, id)
		close(l.ch)
	}
}
