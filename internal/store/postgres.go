package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"vrpsolve/internal/model"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// EnsureSchema creates the tables when missing (dev helper).
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS solve_runs (
			id UUID PRIMARY KEY,
			status TEXT NOT NULL,
			reason TEXT,
			generations INT NOT NULL DEFAULT 0,
			best_fitness JSONB,
			elapsed_ms BIGINT NOT NULL DEFAULT 0,
			solution JSONB,
			trajectory JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS subscriptions (
			id UUID PRIMARY KEY,
			url TEXT NOT NULL,
			events TEXT[] NOT NULL,
			secret TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS webhook_deliveries (
			id UUID PRIMARY KEY,
			subscription_id UUID NOT NULL,
			event_type TEXT NOT NULL,
			url TEXT NOT NULL,
			secret TEXT,
			payload JSONB,
			status TEXT NOT NULL DEFAULT 'pending',
			attempts INT NOT NULL DEFAULT 0,
			next_attempt_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_error TEXT,
			response_code INT,
			latency_ms INT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}
	for _, s := range stmts {
		if _, err := p.db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) CreateRun(ctx context.Context) (model.SolveRun, error) {
	run := model.SolveRun{
		ID:        uuid.New().String(),
		Status:    "running",
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	_, err := p.db.ExecContext(ctx, `INSERT INTO solve_runs (id, status) VALUES ($1,$2)`, run.ID, run.Status)
	if err != nil {
		return model.SolveRun{}, err
	}
	return run, nil
}

func (p *Postgres) GetRun(ctx context.Context, id string) (model.SolveRun, error) {
	row := p.db.QueryRowContext(ctx, `SELECT id::text, status, COALESCE(reason,''), generations, best_fitness, elapsed_ms, solution, trajectory, created_at FROM solve_runs WHERE id=$1`, id)
	var run model.SolveRun
	var fitness, sol, traj []byte
	var created time.Time
	err := row.Scan(&run.ID, &run.Status, &run.Reason, &run.Generations, &fitness, &run.ElapsedMs, &sol, &traj, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SolveRun{}, ErrNotFound
	}
	if err != nil {
		return model.SolveRun{}, err
	}
	run.CreatedAt = created.UTC().Format(time.RFC3339)
	if len(fitness) > 0 {
		_ = json.Unmarshal(fitness, &run.BestFitness)
	}
	if len(sol) > 0 {
		_ = json.Unmarshal(sol, &run.Solution)
	}
	if len(traj) > 0 {
		_ = json.Unmarshal(traj, &run.Trajectory)
	}
	return run, nil
}

func (p *Postgres) ListRuns(ctx context.Context, cursor string, limit int) ([]model.SolveRun, string, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	q := `SELECT id::text, status, COALESCE(reason,''), generations, best_fitness, elapsed_ms, created_at FROM solve_runs`
	args := []any{}
	if cursor != "" {
		q += ` WHERE created_at < (SELECT created_at FROM solve_runs WHERE id=$1)`
		args = append(args, cursor)
	}
	q += ` ORDER BY created_at DESC LIMIT ` + strconv.Itoa(limit+1)
	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()
	var out []model.SolveRun
	for rows.Next() {
		var run model.SolveRun
		var fitness []byte
		var created time.Time
		if err := rows.Scan(&run.ID, &run.Status, &run.Reason, &run.Generations, &fitness, &run.ElapsedMs, &created); err != nil {
			return nil, "", err
		}
		run.CreatedAt = created.UTC().Format(time.RFC3339)
		if len(fitness) > 0 {
			_ = json.Unmarshal(fitness, &run.BestFitness)
		}
		out = append(out, run)
	}
	next := ""
	if len(out) > limit {
		out = out[:limit]
		next = out[limit-1].ID
	}
	return out, next, rows.Err()
}

func (p *Postgres) CompleteRun(ctx context.Context, id string, run model.SolveRun) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE solve_runs SET status=$2, reason=$3, generations=$4, best_fitness=$5, elapsed_ms=$6, solution=$7, trajectory=$8 WHERE id=$1`,
		id, run.Status, run.Reason, run.Generations, toJSON(run.BestFitness), run.ElapsedMs, toJSON(run.Solution), toJSON(run.Trajectory))
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (p *Postgres) FailRun(ctx context.Context, id, reason string) error {
	res, err := p.db.ExecContext(ctx, `UPDATE solve_runs SET status='failed', reason=$2 WHERE id=$1`, id, reason)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (p *Postgres) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
	sub := model.Subscription{ID: uuid.New().String(), URL: req.URL, Events: req.Events, Secret: req.Secret}
	_, err := p.db.ExecContext(ctx, `INSERT INTO subscriptions (id, url, events, secret) VALUES ($1,$2,$3,$4)`,
		sub.ID, sub.URL, pqStringArray(sub.Events), sub.Secret)
	if err != nil {
		return model.Subscription{}, err
	}
	return sub, nil
}

func (p *Postgres) ListSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id::text, url, array_to_json(events)::text FROM subscriptions ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Subscription
	for rows.Next() {
		var sub model.Subscription
		var events string
		if err := rows.Scan(&sub.ID, &sub.URL, &events); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(events), &sub.Events)
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (p *Postgres) GetSubscriptionsForEvent(ctx context.Context, eventType string) ([]model.Subscription, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id::text, url, array_to_json(events)::text, COALESCE(secret,'') FROM subscriptions WHERE $1 = ANY(events) OR '*' = ANY(events)`, eventType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Subscription
	for rows.Next() {
		var sub model.Subscription
		var events string
		if err := rows.Scan(&sub.ID, &sub.URL, &events, &sub.Secret); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(events), &sub.Events)
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (p *Postgres) DeleteSubscription(ctx context.Context, id string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (p *Postgres) EnqueueWebhook(ctx context.Context, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
	id := uuid.New().String()
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO webhook_deliveries (id, subscription_id, event_type, url, secret, payload) VALUES ($1,$2,$3,$4,$5,$6)`,
		id, subscriptionID, eventType, url, secret, payload)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id::text, subscription_id::text, event_type, url, COALESCE(secret,''), payload, status, attempts
		 FROM webhook_deliveries WHERE status='pending' AND next_attempt_at <= now()
		 ORDER BY next_attempt_at LIMIT `+strconv.Itoa(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []WebhookDelivery
	for rows.Next() {
		var d WebhookDelivery
		if err := rows.Scan(&d.ID, &d.SubscriptionID, &d.EventType, &d.URL, &d.Secret, &d.Payload, &d.Status, &d.Attempts); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *Postgres) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int, latencyMs int) error {
	if success {
		_, err := p.db.ExecContext(ctx,
			`UPDATE webhook_deliveries SET status='delivered', attempts=attempts+1, last_error=$2, response_code=$3, latency_ms=$4 WHERE id=$1`,
			id, lastError, responseCode, latencyMs)
		return err
	}
	next := time.Now().Add(time.Minute)
	if nextAttemptAt != nil {
		next = *nextAttemptAt
	}
	_, err := p.db.ExecContext(ctx,
		`UPDATE webhook_deliveries SET attempts=attempts+1, next_attempt_at=$2, last_error=$3, response_code=$4, latency_ms=$5 WHERE id=$1`,
		id, next, lastError, responseCode, latencyMs)
	return err
}

func (p *Postgres) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int, latencyMs int) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE webhook_deliveries SET status='failed', attempts=attempts+1, last_error=$2, response_code=$3, latency_ms=$4 WHERE id=$1`,
		id, lastError, responseCode, latencyMs)
	return err
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func toJSON(v any) []byte {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

// pqStringArray renders a postgres text[] literal.
func pqStringArray(items []string) any {
	if items == nil {
		return nil
	}
	out := "{"
	for i, s := range items {
		if i > 0 {
			out += ","
		}
		out += `"` + s + `"`
	}
	return out + "}"
}

