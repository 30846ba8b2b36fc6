// Package events is the process-wide notification bus. Components subscribe
// when they are built and unsubscribe when they are destroyed, so slides
// evicted during reconciliation never keep receiving settings updates.
package events

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/slide-scroller/overlay/internal/models"
)

// Topic names a class of notification.
type Topic string

const (
	// TopicSettings fires whenever global settings have been applied.
	TopicSettings Topic = "settings"
	// TopicSlide fires when the visible slide changes.
	TopicSlide Topic = "slide"
	// TopicLock fires when the lock state changes.
	TopicLock Topic = "lock"
	// TopicEvent fires when a one-shot event has been consumed.
	TopicEvent Topic = "event"
	// TopicRebuild fires after a structural reconciliation.
	TopicRebuild Topic = "rebuild"
)

// Message is delivered to subscribers.
type Message struct {
	ID       string           `json:"id" msgpack:"id"`
	Topic    Topic            `json:"topic" msgpack:"topic"`
	Time     time.Time        `json:"time" msgpack:"time"`
	Document *models.Document `json:"-" msgpack:"-"`
	Payload  any              `json:"payload,omitempty" msgpack:"payload,omitempty"`
}

// Handler receives messages synchronously on the publishing goroutine.
type Handler func(Message)

type subscription struct {
	id      string
	seq     uint64
	topics  map[Topic]struct{}
	handler Handler
}

// Subscription is returned by Subscribe.
type Subscription struct {
	bus *Bus
	id  string
}

// Bus fans messages out to subscribers in subscription order.
type Bus struct {
	mu        sync.RWMutex
	subs      map[string]*subscription
	seq       uint64
	published uint64
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[string]*subscription),
	}
}

// Subscribe registers h for the given topics, or for every topic when none
// are given.
func (b *Bus) Subscribe(h Handler, topics ...Topic) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	sub := &subscription{
		id:      uuid.New().String(),
		seq:     b.seq,
		handler: h,
	}
	if len(topics) > 0 {
		sub.topics = make(map[Topic]struct{}, len(topics))
		for _, t := range topics {
			sub.topics[t] = struct{}{}
		}
	}
	b.subs[sub.id] = sub

	slog.Debug("bus subscription added",
		"subscription_id", sub.id,
		"topics", topics,
		"total_subscribers", len(b.subs),
	)

	return &Subscription{bus: b, id: sub.id}
}

// Unsubscribe removes the subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.bus == nil {
		return
	}
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[s.id]; !ok {
		return
	}
	delete(b.subs, s.id)

	slog.Debug("bus subscription removed",
		"subscription_id", s.id,
		"total_subscribers", len(b.subs),
	)
}

// ID returns the subscription id.
func (s *Subscription) ID() string {
	return s.id
}

// Publish stamps msg and delivers it. Handlers run outside the bus lock so
// they may subscribe or unsubscribe.
func (b *Bus) Publish(msg Message) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Time.IsZero() {
		msg.Time = time.Now()
	}

	b.mu.Lock()
	b.published++
	targets := make([]*subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.topics != nil {
			if _, ok := sub.topics[msg.Topic]; !ok {
				continue
			}
		}
		targets = append(targets, sub)
	}
	b.mu.Unlock()

	sort.Slice(targets, func(i, j int) bool { return targets[i].seq < targets[j].seq })

	for _, sub := range targets {
		b.mu.RLock()
		_, live := b.subs[sub.id]
		b.mu.RUnlock()
		if !live {
			continue
		}
		sub.handler(msg)
	}
}

// Stats contains bus statistics.
type Stats struct {
	Subscribers int    `json:"subscribers" msgpack:"subscribers"`
	Published   uint64 `json:"published" msgpack:"published"`
}

// Stats returns bus statistics.
func (b *Bus) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return Stats{
		Subscribers: len(b.subs),
		Published:   b.published,
	}
}
