package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/snakearcade/backend/game/engine"
	"github.com/snakearcade/backend/game/service"
	"github.com/snakearcade/backend/game/session"
)

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("Expected client to be created")
	}
	if client.baseURL != baseURL {
		t.Errorf("Expected baseURL %s, got %s", baseURL, client.baseURL)
	}
	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}
	if client.mcpServer == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	expectedResponse := map[string]interface{}{
		"id":    "player-1",
		"score": float64(5),
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(expectedResponse)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	if err := client.apiCall("GET", "/api", nil, &response); err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}
	if response["id"] != expectedResponse["id"] {
		t.Errorf("Expected id %v, got %v", expectedResponse["id"], response["id"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall("GET", "/api", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "session not found"})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.apiCall("GET", "/api/sessions/ghost", nil, nil)
	if err == nil {
		t.Fatal("Expected error for HTTP 404 response")
	}
	if !strings.Contains(err.Error(), "session not found") {
		t.Errorf("Expected API error message to pass through, got: %v", err)
	}
}

func toolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func textResult(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil || len(result.Content) == 0 {
		t.Fatal("Expected result content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func TestClient_handleGameState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" || r.URL.Path != "/api/sessions/player-1/state" {
			t.Errorf("Expected GET /api/sessions/player-1/state, got %s %s", r.Method, r.URL.Path)
		}
		state := engine.GameState{
			GridWidth:  5,
			GridHeight: 5,
			Snake:      []engine.Position{{X: 2, Y: 2}, {X: 1, Y: 2}},
			Direction:  engine.DirRight,
			Food:       engine.Position{X: 4, Y: 4},
			Score:      1,
			Running:    true,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(state)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleGameState(context.Background(),
		toolRequest("game_state", map[string]interface{}{"session_id": "player-1"}))
	if err != nil {
		t.Fatalf("handleGameState failed: %v", err)
	}

	text := textResult(t, result)
	for _, want := range []string{"Score: 1", "Length: 2", "Heading: RIGHT", "H", "o", "*"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in output, got: %s", want, text)
		}
	}
}

func TestClient_handleSetScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions/player-1/score" {
			t.Errorf("Expected POST /api/sessions/player-1/score, got %s %s", r.Method, r.URL.Path)
		}
		var body map[string]int
		json.NewDecoder(r.Body).Decode(&body)
		if body["score"] != 7 {
			t.Errorf("Expected score 7 in body, got %d", body["score"])
		}
		state := engine.GameState{
			GridWidth:  5,
			GridHeight: 5,
			Snake:      make([]engine.Position, 8),
			Score:      7,
			Running:    true,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(state)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleSetScore(context.Background(),
		toolRequest("set_score", map[string]interface{}{
			"session_id": "player-1",
			"score":      float64(7),
		}))
	if err != nil {
		t.Fatalf("handleSetScore failed: %v", err)
	}

	text := textResult(t, result)
	if !strings.Contains(text, "Score set to 7 (body length 8)") {
		t.Errorf("Unexpected set_score output: %s", text)
	}
}

func TestClient_handleListSessions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"count": 1,
			"sessions": []service.SessionInfo{{
				ID:           "player-1",
				AgentEnabled: true,
				Statistics:   session.Stats{Games: 3, BestScore: 12},
				GameState:    &engine.GameState{Running: true},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleListSessions(context.Background(),
		toolRequest("list_sessions", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleListSessions failed: %v", err)
	}

	text := textResult(t, result)
	for _, want := range []string{"player-1", "playing", "agent=true", "best=12"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in output, got: %s", want, text)
		}
	}
}

func TestClient_handleServerStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"count": 2,
			"sessions": []service.SessionInfo{
				{ID: "a", AgentEnabled: true, Statistics: session.Stats{Games: 2, BestScore: 9},
					GameState: &engine.GameState{Running: true}},
				{ID: "b", Statistics: session.Stats{Games: 1, BestScore: 4}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleServerStats(context.Background(),
		toolRequest("server_stats", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleServerStats failed: %v", err)
	}

	text := textResult(t, result)
	for _, want := range []string{"Sessions: 2 (1 playing, 1 with agents)", "Games played: 3", "Best score: 9"} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in output, got: %s", want, text)
		}
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(),
		toolRequest("game_instructions", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	text := textResult(t, result)
	for _, want := range []string{
		"GAME RULES:",
		"BOARD LEGEND:",
		"ADMIN OVERRIDES:",
		"SESSIONS:",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("Expected %q in instructions", want)
		}
	}
}

func TestFormatGameState(t *testing.T) {
	state := &engine.GameState{
		GridWidth:   3,
		GridHeight:  3,
		Snake:       []engine.Position{{X: 1, Y: 1}, {X: 0, Y: 1}},
		Direction:   engine.DirRight,
		Food:        engine.Position{X: 2, Y: 0},
		Score:       1,
		Running:     true,
		TickSeconds: 0.15,
	}

	result := formatGameState(state)

	lines := strings.Split(strings.TrimRight(result, "\n"), "\n")
	var grid []string
	for _, line := range lines {
		if len(line) == 3 && strings.Trim(line, "Ho*.") == "" {
			grid = append(grid, line)
		}
	}
	want := []string{"..*", "oH.", "..."}
	if len(grid) != 3 {
		t.Fatalf("Expected 3 grid rows, got %d in: %s", len(grid), result)
	}
	for i := range want {
		if grid[i] != want[i] {
			t.Errorf("Row %d = %q, want %q", i, grid[i], want[i])
		}
	}
	if strings.Contains(result, "GAME OVER") {
		t.Error("Running game should not report GAME OVER")
	}
}

func TestFormatGameState_GameOver(t *testing.T) {
	state := &engine.GameState{
		GridWidth:  3,
		GridHeight: 3,
		Snake:      []engine.Position{{X: 0, Y: 0}},
		Running:    false,
	}

	if result := formatGameState(state); !strings.Contains(result, "GAME OVER") {
		t.Errorf("Expected GAME OVER in result, got: %s", result)
	}
	if result := formatGameState(nil); !strings.Contains(result, "No game") {
		t.Errorf("Expected placeholder for nil state, got: %s", result)
	}
}
