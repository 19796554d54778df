package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamPublisherFanOut(t *testing.T) {
	p := NewStreamPublisher()

	a, cancelA := p.Subscribe(4)
	b, cancelB := p.Subscribe(4)
	defer cancelA()
	defer cancelB()

	ev := Event{Type: EventOrderCreated, Snapshot: Snapshot{ID: 1, Destination: "bobby"}}
	p.Publish(ev)

	assert.Equal(t, ev, <-a)
	assert.Equal(t, ev, <-b)
}

func TestStreamPublisherSlowSubscriberDropsEvents(t *testing.T) {
	p := NewStreamPublisher()

	ch, cancel := p.Subscribe(1)
	defer cancel()

	p.Publish(Event{Type: EventOrderCreated, Snapshot: Snapshot{ID: 1}})
	p.Publish(Event{Type: EventOrderCancelled, Snapshot: Snapshot{ID: 1}})

	// The buffer held one event; the second was dropped, not blocked on.
	ev := <-ch
	assert.Equal(t, EventOrderCreated, ev.Type)
	select {
	case ev := <-ch:
		t.Fatalf("unexpected buffered event: %v", ev.Type)
	default:
	}
}

func TestStreamPublisherRecent(t *testing.T) {
	p := NewStreamPublisher()

	p.Publish(Event{Type: EventOrderCreated, Snapshot: Snapshot{ID: 9, Destination: "bobby"}})
	p.Publish(Event{Type: EventOrderAmended, Snapshot: Snapshot{ID: 9, Destination: "alice"}})

	ev, ok := p.Recent(9)
	require.True(t, ok)
	assert.Equal(t, EventOrderAmended, ev.Type)
	assert.Equal(t, "alice", ev.Destination)

	_, ok = p.Recent(10)
	assert.False(t, ok)
}

func TestStreamPublisherCancelClosesChannel(t *testing.T) {
	p := NewStreamPublisher()

	ch, cancel := p.Subscribe(1)
	cancel()

	_, open := <-ch
	assert.False(t, open)

	// Publishing after cancellation must not panic.
	p.Publish(Event{Type: EventOrderCreated, Snapshot: Snapshot{ID: 1}})
}

func TestStreamPublisherClose(t *testing.T) {
	p := NewStreamPublisher()

	ch, cancel := p.Subscribe(1)
	defer cancel()

	p.Close()

	_, open := <-ch
	assert.False(t, open)

	// Subscriptions after close get an already-closed channel.
	late, _ := p.Subscribe(1)
	_, open = <-late
	assert.False(t, open)
}
