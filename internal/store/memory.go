package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"vrpsolve/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu         sync.Mutex
	runs       map[string]model.SolveRun
	runOrder   []string
	subs       map[string]model.Subscription
	deliveries map[string]*memDelivery
}

func NewMemory() *Memory {
	return &Memory{
		runs:       map[string]model.SolveRun{},
		subs:       map[string]model.Subscription{},
		deliveries: map[string]*memDelivery{},
	}
}

type memDelivery struct {
	WebhookDelivery
	NextAttemptAt time.Time
	LastError     string
	ResponseCode  int
	LatencyMs     int
}

func (m *Memory) CreateRun(_ context.Context) (model.SolveRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run := model.SolveRun{
		ID:        uuid.New().String(),
		Status:    "running",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	m.runs[run.ID] = run
	m.runOrder = append(m.runOrder, run.ID)
	return run, nil
}

func (m *Memory) GetRun(_ context.Context, id string) (model.SolveRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return model.SolveRun{}, ErrNotFound
	}
	return run, nil
}

func (m *Memory) ListRuns(_ context.Context, cursor string, limit int) ([]model.SolveRun, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	start := 0
	if cursor != "" {
		for i, id := range m.runOrder {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	var out []model.SolveRun
	next := ""
	for i := start; i < len(m.runOrder) && len(out) < limit; i++ {
		run := m.runs[m.runOrder[i]]
		run.Trajectory = nil // list view stays small
		out = append(out, run)
		if len(out) == limit && i+1 < len(m.runOrder) {
			next = m.runOrder[i]
		}
	}
	return out, next, nil
}

func (m *Memory) CompleteRun(_ context.Context, id string, run model.SolveRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.runs[id]
	if !ok {
		return ErrNotFound
	}
	run.ID = cur.ID
	run.CreatedAt = cur.CreatedAt
	m.runs[id] = run
	return nil
}

func (m *Memory) FailRun(_ context.Context, id, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	run, ok := m.runs[id]
	if !ok {
		return ErrNotFound
	}
	run.Status = "failed"
	run.Reason = reason
	m.runs[id] = run
	return nil
}

func (m *Memory) CreateSubscription(_ context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub := model.Subscription{ID: uuid.New().String(), URL: req.URL, Events: req.Events, Secret: req.Secret}
	m.subs[sub.ID] = sub
	return sub, nil
}

func (m *Memory) ListSubscriptions(_ context.Context) ([]model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Subscription, 0, len(m.subs))
	for _, s := range m.subs {
		s.Secret = ""
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetSubscriptionsForEvent(_ context.Context, eventType string) ([]model.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Subscription
	for _, s := range m.subs {
		for _, e := range s.Events {
			if e == eventType || e == "*" {
				out = append(out, s)
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) DeleteSubscription(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[id]; !ok {
		return ErrNotFound
	}
	delete(m.subs, id)
	return nil
}

func (m *Memory) EnqueueWebhook(_ context.Context, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.New().String()
	m.deliveries[id] = &memDelivery{
		WebhookDelivery: WebhookDelivery{
			ID: id, SubscriptionID: subscriptionID, EventType: eventType,
			URL: url, Secret: secret, Payload: payload, Status: "pending",
		},
		NextAttemptAt: time.Now(),
	}
	return id, nil
}

func (m *Memory) FetchDueWebhookDeliveries(_ context.Context, limit int) ([]WebhookDelivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	var out []WebhookDelivery
	for _, d := range m.deliveries {
		if d.Status == "pending" && !d.NextAttemptAt.After(now) {
			out = append(out, d.WebhookDelivery)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (m *Memory) MarkWebhookDelivery(_ context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok {
		return ErrNotFound
	}
	d.Attempts++
	d.LastError = lastError
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	if success {
		d.Status = "delivered"
	} else if nextAttemptAt != nil {
		d.NextAttemptAt = *nextAttemptAt
	}
	return nil
}

func (m *Memory) FailWebhookDelivery(_ context.Context, id string, lastError string, responseCode int, latencyMs int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deliveries[id]
	if !ok {
		return ErrNotFound
	}
	d.Attempts++
	d.Status = "failed"
	d.LastError = lastError
	d.ResponseCode = responseCode
	d.LatencyMs = latencyMs
	return nil
}
