package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/snakearcade/backend/game/engine"
)

func testClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 2 * time.Second},
	}
}

func TestAPIClientCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}))
	defer server.Close()

	var resp map[string]string
	if err := testClient(server.URL).call("GET", "/api/health", nil, &resp); err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if resp["status"] != "healthy" {
		t.Errorf("status = %q", resp["status"])
	}
}

func TestAPIClientCallErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "session not found"})
	}))
	defer server.Close()

	err := testClient(server.URL).call("GET", "/api/sessions/ghost", nil, nil)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !strings.Contains(err.Error(), "session not found") {
		t.Errorf("expected API error message, got: %v", err)
	}
}

func TestAPIClientCallPostsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]int
		json.NewDecoder(r.Body).Decode(&body)
		if body["score"] != 3 {
			t.Errorf("expected score 3 in body, got %d", body["score"])
		}
		json.NewEncoder(w).Encode(engine.GameState{Score: 3, Snake: make([]engine.Position, 4)})
	}))
	defer server.Close()

	var state engine.GameState
	err := testClient(server.URL).call("POST", "/api/sessions/s1/score",
		map[string]int{"score": 3}, &state)
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if state.Score != 3 || len(state.Snake) != 4 {
		t.Errorf("score=%d len=%d", state.Score, len(state.Snake))
	}
}

func TestPrintBoardDoesNotPanic(t *testing.T) {
	state := &engine.GameState{
		GridWidth:  4,
		GridHeight: 4,
		Snake:      []engine.Position{{X: 1, Y: 1}},
		Direction:  engine.DirUp,
		Food:       engine.Position{X: 3, Y: 3},
		Running:    false,
	}

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("printBoard panicked: %v", r)
		}
	}()

	printBoard(state)
}
