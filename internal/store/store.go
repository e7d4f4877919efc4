package store

import (
	"context"
	"errors"
	"time"

	"vrpsolve/internal/model"
)

// Store is the persistence interface used by the API server.
type Store interface {
	// Solve runs
	CreateRun(ctx context.Context) (model.SolveRun, error)
	GetRun(ctx context.Context, id string) (model.SolveRun, error)
	ListRuns(ctx context.Context, cursor string, limit int) ([]model.SolveRun, string, error)
	CompleteRun(ctx context.Context, id string, run model.SolveRun) error
	FailRun(ctx context.Context, id, reason string) error

	// Webhook subscriptions
	CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error)
	ListSubscriptions(ctx context.Context) ([]model.Subscription, error)
	GetSubscriptionsForEvent(ctx context.Context, eventType string) ([]model.Subscription, error)
	DeleteSubscription(ctx context.Context, id string) error

	// Webhook deliveries
	EnqueueWebhook(ctx context.Context, subscriptionID, eventType, url, secret string, payload []byte) (string, error)
	FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error)
	MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error
	FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error
}

// WebhookDelivery is one pending delivery attempt.
type WebhookDelivery struct {
	ID             string
	SubscriptionID string
	EventType      string
	URL            string
	Secret         string
	Payload        []byte
	Status         string
	Attempts       int
}

var ErrNotFound = errors.New("not found")
