package events

import (
	"sync"
	"sync/atomic"

	"github.com/kasuganosora/platformerkit/server/game/character"
)

const TopicTransition = "transition"

// Event is one simulation event delivered to subscribers.
type Event struct {
	Topic         string `json:"topic"`
	Tick          uint64 `json:"tick"`
	CharacterID   string `json:"character_id"`
	CharacterName string `json:"character_name"`
	From          string `json:"from,omitempty"`
	To            string `json:"to,omitempty"`
	Forced        bool   `json:"forced,omitempty"`
	Health        int    `json:"health"`
}

type subscriber struct {
	ch chan Event
}

// Hub is an in-process fan-out pub/sub. Publishing never blocks: a
// subscriber whose buffer is full misses the event.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string][]*subscriber
	bufSize     int
	dropped     atomic.Int64
}

// NewHub creates a Hub with the given per-subscriber buffer size.
func NewHub(bufSize int) *Hub {
	if bufSize <= 0 {
		bufSize = 256
	}
	return &Hub{
		subscribers: make(map[string][]*subscriber),
		bufSize:     bufSize,
	}
}

// Publish sends ev to all subscribers of ev.Topic.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.subscribers[ev.Topic] {
		select {
		case s.ch <- ev:
		default:
			h.dropped.Add(1)
		}
	}
}

// Subscribe returns a channel of events for the given topics and a cancel
// function that unsubscribes and closes the channel.
func (h *Hub) Subscribe(topics ...string) (<-chan Event, func()) {
	s := &subscriber{ch: make(chan Event, h.bufSize)}

	h.mu.Lock()
	for _, t := range topics {
		h.subscribers[t] = append(h.subscribers[t], s)
	}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for _, t := range topics {
				list := h.subscribers[t]
				for j, sub := range list {
					if sub == s {
						h.subscribers[t] = append(list[:j:j], list[j+1:]...)
						break
					}
				}
				if len(h.subscribers[t]) == 0 {
					delete(h.subscribers, t)
				}
			}
			close(s.ch)
		})
	}
	return s.ch, cancel
}

// Subscribers returns the number of subscriptions to topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[topic])
}

// Dropped returns how many deliveries were skipped because a buffer was full.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }

// Listen publishes a character state transition. Its signature matches the
// world's transition listener.
func (h *Hub) Listen(c *character.Character, t character.Transition, tick uint64) {
	h.Publish(Event{
		Topic:         TopicTransition,
		Tick:          tick,
		CharacterID:   c.ID.String(),
		CharacterName: c.Name,
		From:          character.StateName(t.From),
		To:            character.StateName(t.To),
		Forced:        t.Forced,
		Health:        c.Health.Current(),
	})
}
