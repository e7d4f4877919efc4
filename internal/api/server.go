// Package api implements the HTTP surface of the solver service.
package api

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"vrpsolve/internal/config"
	"vrpsolve/internal/store"
	"vrpsolve/internal/webhooks"
)

type Server struct {
	Store  store.Store
	Pub    *webhooks.Publisher
	Broker EventBroker
	Cfg    config.Config

	limiter *rate.Limiter

	mu      sync.Mutex
	running map[string]context.CancelFunc
}

// NewServer wires the store and broker from configuration. With no
// DATABASE_URL the store is in-memory; with no REDIS_URL events fan out
// in-process only.
func NewServer(cfg config.Config) (*Server, error) {
	var s store.Store
	if strings.TrimSpace(cfg.Server.DatabaseURL) == "" {
		s = store.NewMemory()
	} else {
		sp, err := store.NewPostgres(cfg.Server.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := sp.EnsureSchema(context.Background()); err != nil {
			return nil, err
		}
		s = sp
	}
	var broker EventBroker
	if cfg.Server.RedisURL != "" {
		rb, err := NewRedisBroker(cfg.Server.RedisURL)
		if err != nil {
			return nil, err
		}
		broker = rb
	} else {
		broker = NewBroker()
	}
	lim := rate.NewLimiter(rate.Inf, 0)
	if cfg.Server.RateLimit > 0 {
		burst := cfg.Server.RateBurst
		if burst <= 0 {
			burst = cfg.Server.RateLimit
		}
		lim = rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), burst)
	}
	return &Server{
		Store:   s,
		Pub:     webhooks.NewPublisher(s),
		Broker:  broker,
		Cfg:     cfg,
		limiter: lim,
		running: map[string]context.CancelFunc{},
	}, nil
}

// NewWebhookWorker creates the background delivery worker.
func (s *Server) NewWebhookWorker() *webhooks.Worker {
	return webhooks.NewWorker(s.Store)
}

func (s *Server) trackRun(id string, cancel context.CancelFunc) {
	s.mu.Lock()
	s.running[id] = cancel
	s.mu.Unlock()
}

func (s *Server) untrackRun(id string) {
	s.mu.Lock()
	delete(s.running, id)
	s.mu.Unlock()
}

// cancelRun cancels a run's context. It reports false when the run is not
// active anymore.
func (s *Server) cancelRun(id string) bool {
	s.mu.Lock()
	cancel, ok := s.running[id]
	s.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}
