// Package main runs a demo WebSocket client that submits a small problem
// and streams solve events.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	body := []byte(`{
		"problem": {
			"jobs": [
				{"id": "j1", "location": {"lat": 52.52, "lng": 13.40}, "demand": {"weight": 2}},
				{"id": "j2", "location": {"lat": 52.53, "lng": 13.41}, "demand": {"weight": 3}},
				{"id": "j3", "location": {"lat": 52.50, "lng": 13.39}, "demand": {"weight": 1}}
			],
			"vehicles": [
				{"id": "v1", "start": {"lat": 52.51, "lng": 13.38}, "capWeight": 10}
			]
		},
		"maxGenerations": 2000,
		"timeBudgetMs": 5000
	}`)
	req, _ := http.NewRequest(http.MethodPost, base+"/v1/solves", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	var run struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&run); err != nil {
		log.Fatal(err)
	}
	if run.ID == "" {
		log.Fatal("no run id returned")
	}
	log.Printf("Run ID: %s", run.ID)

	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/solves/" + run.ID + "/ws"}
	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var evt struct {
				Type string         `json:"type"`
				Data map[string]any `json:"data"`
			}
			if err := c.ReadJSON(&evt); err != nil {
				log.Printf("read: %v", err)
				return
			}
			data, _ := json.Marshal(evt.Data)
			log.Printf("WS <- %s: %s", evt.Type, data)
			if evt.Type == "solve.finished" || evt.Type == "solve.failed" {
				return
			}
		}
	}()

	select {
	case <-time.After(30 * time.Second):
	case <-done:
	}
}
