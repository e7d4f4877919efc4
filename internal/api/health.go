package api

import (
	"net/http"

	"vrpsolve/internal/buildinfo"
)

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "version": buildinfo.Version, "build": buildinfo.Info()})
}

// ReadyHandler reports readiness. The in-memory store is always ready; a
// database-backed store could be probed here.
func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ready": true})
}
