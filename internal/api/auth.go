package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// authorize checks the bearer token when one is configured. With no token
// configured the API is open (dev mode).
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) bool {
	want := s.Cfg.Server.AuthToken
	if want == "" {
		return true
	}
	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		got := strings.TrimSpace(authz[len("Bearer "):])
		if subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1 {
			return true
		}
	}
	writeProblem(w, http.StatusUnauthorized, "Unauthorized", "missing or invalid bearer token", r.URL.Path)
	return false
}
