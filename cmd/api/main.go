package main

import (
	"bufio"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vrpsolve/internal/api"
	"vrpsolve/internal/config"
	"vrpsolve/internal/metrics"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	srv, err := api.NewServer(cfg)
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}
	metrics.RegisterDefault()

	mux := http.NewServeMux()

	// Solves
	mux.HandleFunc("/v1/solves", srv.SolvesHandler)
	mux.HandleFunc("/v1/solves/", srv.SolveByIDHandler) // includes /cancel, /stream, /ws

	// Webhook subscriptions
	mux.HandleFunc("/v1/subscriptions", srv.SubscriptionsHandler)
	mux.HandleFunc("/v1/subscriptions/", srv.SubscriptionByIDHandler)

	// Health and metrics
	mux.HandleFunc("/healthz", srv.HealthHandler)
	mux.HandleFunc("/readyz", srv.ReadyHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           logMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("API listening on %s", cfg.Server.Addr)
	srv.NewWebhookWorker().Start()
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack is needed for the WebSocket upgrade behind the middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		dur := time.Since(start)
		status := strconv.Itoa(sw.status)
		metrics.HTTPRequests.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		metrics.HTTPDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(dur.Seconds())
		log.Printf("%s %s %s %s %v", r.RemoteAddr, r.Method, r.URL.Path, status, dur)
	})
}
