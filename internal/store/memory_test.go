package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"vrpsolve/internal/model"
)

func TestRunLifecycle(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	run, err := m.CreateRun(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if run.ID == "" || run.Status != "running" || run.CreatedAt == "" {
		t.Fatalf("unexpected new run: %+v", run)
	}

	got, err := m.GetRun(ctx, run.ID)
	if err != nil || got.ID != run.ID {
		t.Fatalf("get: %+v, %v", got, err)
	}

	final := model.SolveRun{
		Status:      "converged",
		Generations: 42,
		BestFitness: []float64{0, 1234.5},
		Trajectory:  []model.FitnessPoint{{Generation: 0, Fitness: []float64{1, 9999}}},
	}
	if err := m.CompleteRun(ctx, run.ID, final); err != nil {
		t.Fatalf("complete: %v", err)
	}
	got, err = m.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("get after complete: %v", err)
	}
	if got.Status != "converged" || got.Generations != 42 {
		t.Fatalf("completion not persisted: %+v", got)
	}
	if got.ID != run.ID || got.CreatedAt != run.CreatedAt {
		t.Fatalf("identity fields must survive completion: %+v", got)
	}

	if _, err := m.GetRun(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := m.CompleteRun(ctx, "missing", final); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFailRun(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	run, _ := m.CreateRun(ctx)
	if err := m.FailRun(ctx, run.ID, "boom"); err != nil {
		t.Fatalf("fail: %v", err)
	}
	got, _ := m.GetRun(ctx, run.ID)
	if got.Status != "failed" || got.Reason != "boom" {
		t.Fatalf("failure not persisted: %+v", got)
	}
	if err := m.FailRun(ctx, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListRunsPaginationAndTrimming(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	ids := make([]string, 0, 5)
	for i := 0; i < 5; i++ {
		run, err := m.CreateRun(ctx)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, run.ID)
	}
	if err := m.CompleteRun(ctx, ids[0], model.SolveRun{
		Status:     "converged",
		Trajectory: []model.FitnessPoint{{Generation: 1}},
	}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	page1, cursor, err := m.ListRuns(ctx, "", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page1) != 2 || cursor == "" {
		t.Fatalf("expected full first page with cursor, got %d / %q", len(page1), cursor)
	}
	if page1[0].ID != ids[0] || page1[0].Trajectory != nil {
		t.Fatalf("list view should drop trajectories: %+v", page1[0])
	}

	page2, cursor, err := m.ListRuns(ctx, cursor, 2)
	if err != nil || len(page2) != 2 {
		t.Fatalf("second page: %d, %v", len(page2), err)
	}
	if page2[0].ID != ids[2] {
		t.Fatalf("cursor did not resume after page 1: got %s want %s", page2[0].ID, ids[2])
	}
	page3, cursor, err := m.ListRuns(ctx, cursor, 2)
	if err != nil || len(page3) != 1 || cursor != "" {
		t.Fatalf("final page: %d items, cursor %q, %v", len(page3), cursor, err)
	}
	if page3[0].ID != ids[4] {
		t.Fatalf("unexpected final page: %+v", page3)
	}
}

func TestListRunsClampsLimit(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	for i := 0; i < 30; i++ {
		if _, err := m.CreateRun(ctx); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	out, _, err := m.ListRuns(ctx, "", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 20 {
		t.Fatalf("zero limit should fall back to the default page size, got %d", len(out))
	}
	out, _, _ = m.ListRuns(ctx, "", 1000)
	if len(out) != 20 {
		t.Fatalf("oversized limit should be clamped, got %d", len(out))
	}
}

func TestSubscriptionStore(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	sub, err := m.CreateSubscription(ctx, model.SubscriptionRequest{
		URL: "https://example.com/a", Events: []string{"run.completed"}, Secret: "s1",
	})
	if err != nil || sub.ID == "" {
		t.Fatalf("create: %+v, %v", sub, err)
	}
	catchAll, err := m.CreateSubscription(ctx, model.SubscriptionRequest{
		URL: "https://example.com/b", Events: []string{"*"}, Secret: "s2",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	subs, err := m.ListSubscriptions(ctx)
	if err != nil || len(subs) != 2 {
		t.Fatalf("list: %d, %v", len(subs), err)
	}
	for _, s := range subs {
		if s.Secret != "" {
			t.Fatalf("list must not expose secrets: %+v", s)
		}
	}

	matched, err := m.GetSubscriptionsForEvent(ctx, "run.failed")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(matched) != 1 || matched[0].ID != catchAll.ID {
		t.Fatalf("only the wildcard should match run.failed: %+v", matched)
	}
	matched, _ = m.GetSubscriptionsForEvent(ctx, "run.completed")
	if len(matched) != 2 {
		t.Fatalf("both should match run.completed, got %d", len(matched))
	}

	if err := m.DeleteSubscription(ctx, sub.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := m.DeleteSubscription(ctx, sub.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestWebhookDeliveryQueue(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.EnqueueWebhook(ctx, "sub1", "run.completed", "https://example.com/hook", "sec", []byte(`{"x":1}`))
	if err != nil || id == "" {
		t.Fatalf("enqueue: %q, %v", id, err)
	}

	due, err := m.FetchDueWebhookDeliveries(ctx, 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(due) != 1 || due[0].ID != id || due[0].EventType != "run.completed" {
		t.Fatalf("unexpected due set: %+v", due)
	}

	// retry pushes the attempt into the future and out of the due set
	next := time.Now().Add(time.Hour)
	if err := m.MarkWebhookDelivery(ctx, id, false, &next, "status 500", 500, 12); err != nil {
		t.Fatalf("mark retry: %v", err)
	}
	due, _ = m.FetchDueWebhookDeliveries(ctx, 10)
	if len(due) != 0 {
		t.Fatalf("retried delivery should not be due yet: %+v", due)
	}

	past := time.Now().Add(-time.Minute)
	if err := m.MarkWebhookDelivery(ctx, id, false, &past, "status 500", 500, 12); err != nil {
		t.Fatalf("mark retry: %v", err)
	}
	due, _ = m.FetchDueWebhookDeliveries(ctx, 10)
	if len(due) != 1 {
		t.Fatalf("delivery should be due again: %+v", due)
	}
	if due[0].Attempts != 2 {
		t.Fatalf("attempts should count every mark, got %d", due[0].Attempts)
	}

	if err := m.MarkWebhookDelivery(ctx, id, true, nil, "", 200, 8); err != nil {
		t.Fatalf("mark success: %v", err)
	}
	due, _ = m.FetchDueWebhookDeliveries(ctx, 10)
	if len(due) != 0 {
		t.Fatalf("delivered webhook must leave the queue: %+v", due)
	}
}

func TestFailWebhookDelivery(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	id, _ := m.EnqueueWebhook(ctx, "sub1", "run.failed", "https://example.com/hook", "", nil)
	if err := m.FailWebhookDelivery(ctx, id, "gave up", 503, 30); err != nil {
		t.Fatalf("fail: %v", err)
	}
	due, _ := m.FetchDueWebhookDeliveries(ctx, 10)
	if len(due) != 0 {
		t.Fatalf("failed delivery must leave the queue: %+v", due)
	}
	if err := m.FailWebhookDelivery(ctx, "missing", "x", 0, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := m.MarkWebhookDelivery(ctx, "missing", true, nil, "", 0, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
