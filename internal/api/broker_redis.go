package api

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
)

type EventBroker interface {
	Subscribe(runID string) chan Event
	Unsubscribe(runID string, ch chan Event)
	Publish(runID string, evt Event)
}

// RedisBroker fans events out over Redis Pub/Sub so stream clients can
// attach to any replica.
type RedisBroker struct {
	rdb *redis.Client

	mu   sync.Mutex
	subs map[chan Event]*redis.PubSub
}

func NewRedisBroker(url string) (*RedisBroker, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &RedisBroker{rdb: redis.NewClient(opt), subs: map[chan Event]*redis.PubSub{}}, nil
}

func (b *RedisBroker) Subscribe(runID string) chan Event {
	ch := make(chan Event, 16)
	ctx := context.Background()
	ps := b.rdb.Subscribe(ctx, b.chanName(runID))
	_, _ = ps.Receive(ctx) // confirm subscription before handing the channel out
	b.mu.Lock()
	b.subs[ch] = ps
	b.mu.Unlock()
	go func() {
		defer close(ch)
		for msg := range ps.Channel() {
			var evt Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err == nil {
				select {
				case ch <- evt:
				default:
				}
			}
		}
	}()
	return ch
}

func (b *RedisBroker) Unsubscribe(runID string, ch chan Event) {
	b.mu.Lock()
	ps := b.subs[ch]
	delete(b.subs, ch)
	b.mu.Unlock()
	if ps != nil {
		_ = ps.Close() // ends the fanout goroutine, which closes ch
	}
}

func (b *RedisBroker) Publish(runID string, evt Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	data, _ := json.Marshal(evt)
	_ = b.rdb.Publish(ctx, b.chanName(runID), data).Err()
}

func (b *RedisBroker) chanName(runID string) string { return "run:" + runID }
