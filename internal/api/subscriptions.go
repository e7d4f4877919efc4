package api

import (
	"net/http"
	"net/url"
	"strings"

	"vrpsolve/internal/model"
)

// SubscriptionsHandler handles POST/GET /v1/subscriptions.
func (s *Server) SubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r) {
		return
	}
	switch r.Method {
	case http.MethodPost:
		var req model.SubscriptionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
			return
		}
		if err := validateSubscription(req); err != "" {
			writeProblem(w, http.StatusBadRequest, "Invalid subscription", err, r.URL.Path)
			return
		}
		sub, err := s.Store.CreateSubscription(r.Context(), req)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Create subscription failed", err.Error(), r.URL.Path)
			return
		}
		sub.Secret = ""
		writeJSON(w, http.StatusCreated, sub)
	case http.MethodGet:
		subs, err := s.Store.ListSubscriptions(r.Context())
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List subscriptions failed", err.Error(), r.URL.Path)
			return
		}
		for i := range subs {
			subs[i].Secret = ""
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": subs})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SubscriptionByIDHandler handles DELETE /v1/subscriptions/{id}.
func (s *Server) SubscriptionByIDHandler(w http.ResponseWriter, r *http.Request) {
	if !s.authorize(w, r) {
		return
	}
	if r.Method != http.MethodDelete {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/subscriptions/")
	if id == "" {
		writeProblem(w, http.StatusNotFound, "Not found", "missing subscription id", r.URL.Path)
		return
	}
	if err := s.Store.DeleteSubscription(r.Context(), id); err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validateSubscription(req model.SubscriptionRequest) string {
	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "url must be an absolute http(s) URL"
	}
	if len(req.Events) == 0 {
		return "at least one event type required"
	}
	for _, e := range req.Events {
		switch e {
		case "*", "run.completed", "run.failed":
		default:
			return "unknown event type " + e
		}
	}
	return ""
}
