package api

import (
	"sync"
)

// Event is one solve progress notification fanned out to stream clients.
type Event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// Broker is the in-process fanout used when no Redis is configured.
type Broker struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{} // runID -> set of channels
}

func NewBroker() *Broker {
	return &Broker{subs: map[string]map[chan Event]struct{}{}}
}

func (b *Broker) Subscribe(runID string) chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	if b.subs[runID] == nil {
		b.subs[runID] = map[chan Event]struct{}{}
	}
	b.subs[runID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(runID string, ch chan Event) {
	b.mu.Lock()
	if m := b.subs[runID]; m != nil {
		delete(m, ch)
		if len(m) == 0 {
			delete(b.subs, runID)
		}
	}
	b.mu.Unlock()
	close(ch)
}

// Publish never blocks; slow subscribers drop events.
func (b *Broker) Publish(runID string, evt Event) {
	b.mu.Lock()
	for ch := range b.subs[runID] {
		select {
		case ch <- evt:
		default:
		}
	}
	b.mu.Unlock()
}
