// Package webhooks delivers solve lifecycle events to registered
// subscriber endpoints.
package webhooks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vrpsolve/internal/store"
)

type Publisher struct {
	Store store.Store
}

func NewPublisher(s store.Store) *Publisher {
	return &Publisher{Store: s}
}

// Emit enqueues the event for every subscription matching its type. The
// delivery worker handles retries and signing.
func (p *Publisher) Emit(ctx context.Context, eventType string, data any) {
	subs, err := p.Store.GetSubscriptionsForEvent(ctx, eventType)
	if err != nil || len(subs) == 0 {
		return
	}
	payload := map[string]any{
		"id":   fmt.Sprintf("evt_%d", time.Now().UnixNano()),
		"type": eventType,
		"ts":   time.Now().UTC().Format(time.RFC3339),
		"data": data,
	}
	body, _ := json.Marshal(payload)
	for _, sub := range subs {
		_, _ = p.Store.EnqueueWebhook(ctx, sub.ID, eventType, sub.URL, sub.Secret, body)
	}
}
