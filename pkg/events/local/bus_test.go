package local

import (
	"sync"
	"testing"
	"time"

	"github.com/veesix-networks/ndiscd/pkg/events"
)

func TestPublishSubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	var mu sync.Mutex
	var got []events.Event
	done := make(chan struct{}, 4)

	bus.Subscribe("test:topic", func(e events.Event) {
		mu.Lock()
		got = append(got, e)
		mu.Unlock()
		done <- struct{}{}
	})

	bus.Publish("test:topic", events.Event{Source: "a", Data: 1})
	bus.Publish("test:topic", events.Event{Source: "b", Data: 2})

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	// Dispatch preserves publish order.
	if got[0].Source != "a" || got[1].Source != "b" {
		t.Errorf("order = %s, %s, want a, b", got[0].Source, got[1].Source)
	}
	if got[0].ID == "" || got[0].Timestamp.IsZero() || got[0].Type != "test:topic" {
		t.Errorf("envelope not filled in: %+v", got[0])
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	delivered := make(chan events.Event, 4)
	sub := bus.Subscribe("test:topic", func(e events.Event) {
		delivered <- e
	})
	sub.Unsubscribe()

	bus.Publish("test:topic", events.Event{Source: "a"})

	select {
	case e := <-delivered:
		t.Fatalf("received event %+v after unsubscribe", e)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestTopicIsolation(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	delivered := make(chan string, 4)
	bus.Subscribe("topic:a", func(e events.Event) { delivered <- "a" })
	bus.Subscribe("topic:b", func(e events.Event) { delivered <- "b" })

	bus.Publish("topic:a", events.Event{})

	select {
	case topic := <-delivered:
		if topic != "a" {
			t.Fatalf("delivered to subscriber of topic %s", topic)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}

	select {
	case topic := <-delivered:
		t.Fatalf("unexpected second delivery to %s", topic)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStats(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	bus.Subscribe("test:topic", func(events.Event) {})
	bus.Publish("test:topic", events.Event{})

	stats := bus.Stats()
	if stats.Published != 1 {
		t.Errorf("Published = %d, want 1", stats.Published)
	}
	if stats.Dropped != 0 {
		t.Errorf("Dropped = %d, want 0", stats.Dropped)
	}
	if len(stats.Topics) != 1 || stats.Topics[0].Subscribers != 1 {
		t.Errorf("Topics = %+v, want one topic with one subscriber", stats.Topics)
	}
}
