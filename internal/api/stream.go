package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

// streamSSE serves GET /v1/solves/{id}/stream as Server-Sent Events. The
// stream ends when the client goes away or the solve publishes its
// terminal event.
func (s *Server) streamSSE(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "Streaming unsupported", "response writer cannot flush", r.URL.Path)
		return
	}
	if _, err := s.Store.GetRun(r.Context(), id); err != nil {
		writeStoreError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.Broker.Subscribe(id)
	defer s.Broker.Unsubscribe(id, ch)

	keepalive := time.NewTicker(15 * time.Second)
	defer keepalive.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case evt, open := <-ch:
			if !open {
				return
			}
			data, _ := json.Marshal(evt.Data)
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Type, data)
			flusher.Flush()
			if terminalEvent(evt.Type) {
				return
			}
		}
	}
}

// streamWS serves GET /v1/solves/{id}/ws, the same event stream over a
// WebSocket for clients that want bidirectional keepalive.
func (s *Server) streamWS(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := s.Store.GetRun(r.Context(), id); err != nil {
		writeStoreError(w, r, err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(1 << 16)
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	// Drain client frames so pongs and close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ch := s.Broker.Subscribe(id)
	defer s.Broker.Unsubscribe(id, ch)

	ping := time.NewTicker(20 * time.Second)
	defer ping.Stop()
	for {
		select {
		case <-done:
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case evt, open := <-ch:
			if !open {
				return
			}
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
			if terminalEvent(evt.Type) {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
				return
			}
		}
	}
}

func terminalEvent(t string) bool {
	return t == "solve.finished" || t == "solve.failed"
}
