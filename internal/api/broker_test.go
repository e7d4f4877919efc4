package api

import "testing"

func TestBrokerFanout(t *testing.T) {
	b := NewBroker()
	a := b.Subscribe("run1")
	c := b.Subscribe("run1")
	other := b.Subscribe("run2")

	b.Publish("run1", Event{Type: "solve.improved"})
	for _, ch := range []chan Event{a, c} {
		select {
		case evt := <-ch:
			if evt.Type != "solve.improved" {
				t.Fatalf("unexpected event %+v", evt)
			}
		default:
			t.Fatalf("subscriber missed the event")
		}
	}
	select {
	case evt := <-other:
		t.Fatalf("run2 subscriber must not see run1 events: %+v", evt)
	default:
	}
	b.Unsubscribe("run1", a)
	b.Unsubscribe("run1", c)
	b.Unsubscribe("run2", other)
}

func TestBrokerUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("run1")
	b.Unsubscribe("run1", ch)
	if _, open := <-ch; open {
		t.Fatalf("unsubscribed channel must be closed")
	}
	// publishing after the last unsubscribe is a no-op
	b.Publish("run1", Event{Type: "solve.finished"})
}

func TestBrokerPublishNeverBlocks(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("run1")
	for i := 0; i < 100; i++ {
		b.Publish("run1", Event{Type: "solve.improved"})
	}
	if len(ch) != cap(ch) {
		t.Fatalf("buffer should be full, got %d/%d", len(ch), cap(ch))
	}
	b.Unsubscribe("run1", ch)
}
