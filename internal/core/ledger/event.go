package ledger

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// EventType identifies which mutation produced an event.
type EventType string

const (
	EventOrderCreated   EventType = "orderCreated"
	EventOrderAmended   EventType = "orderAmended"
	EventOrderCancelled EventType = "orderCancelled"
	EventOrderFinished  EventType = "orderFinished"
)

// Event is the record emitted after every successful mutation: the type of
// mutation plus the order snapshot as it stood when the operation applied.
type Event struct {
	Type EventType `json:"type"`
	Snapshot
}

// Publisher receives events from the ledger. Publish is called with the
// ledger lock held, so implementations must not call back into the ledger and
// must not block.
type Publisher interface {
	Publish(Event)
}

// NoOpPublisher discards all events. It is the default publisher.
type NoOpPublisher struct{}

func (NoOpPublisher) Publish(Event) {}

const recentEventCacheSize = 512

// StreamPublisher fans events out to subscribers and keeps a bounded cache of
// the latest event per order id, so late subscribers can look up what most
// recently happened to an order.
type StreamPublisher struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
	recent *lru.Cache[uint64, Event]
	closed bool
}

// NewStreamPublisher creates an empty publisher.
func NewStreamPublisher() *StreamPublisher {
	recent, _ := lru.New[uint64, Event](recentEventCacheSize)
	return &StreamPublisher{
		subs:   make(map[int]chan Event),
		recent: recent,
	}
}

// Publish delivers the event to every subscriber and records it in the recent
// cache. Delivery is non-blocking: a subscriber whose buffer is full misses
// the event rather than stalling the ledger.
func (p *StreamPublisher) Publish(ev Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.recent.Add(ev.ID, ev)
	for _, ch := range p.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a new subscriber with the given channel buffer and
// returns the event channel plus a cancel func. Cancelling closes the channel.
func (p *StreamPublisher) Subscribe(buffer int) (<-chan Event, func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch := make(chan Event, buffer)
	if p.closed {
		close(ch)
		return ch, func() {}
	}
	id := p.nextID
	p.nextID++
	p.subs[id] = ch

	cancel := func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if sub, ok := p.subs[id]; ok {
			delete(p.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Recent returns the latest cached event for an order id, if still cached.
func (p *StreamPublisher) Recent(id uint64) (Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.recent.Get(id)
}

// Close drops all subscribers, closing their channels. Publish becomes a
// no-op afterwards.
func (p *StreamPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	for id, ch := range p.subs {
		delete(p.subs, id)
		close(ch)
	}
}
