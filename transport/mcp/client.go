package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/snakearcade/backend/game/config"
	"github.com/snakearcade/backend/game/engine"
	"github.com/snakearcade/backend/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Snake Arcade Backend",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Snake Arcade Backend - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Players connect over websocket and each connection runs its own snake
game. These tools are the operator view: inspect live sessions, read
board state, and apply admin overrides.

AVAILABLE TOOLS:
- list_sessions: List all connected sessions
- get_session: Get one session's details and statistics
- game_state: Render a session's current board
- set_score: Force a session's score (body length follows)
- toggle_invulnerability: Flip a session's invulnerability override
- replay_game: Restart a session's game in place
- remove_session: Kick a session
- list_presets: List available grid presets
- server_stats: Aggregate statistics across sessions
- game_instructions: Rules and admin semantics`),
	)

	c.registerTools()
}

func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all connected game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details and statistics of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID to retrieve",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board state of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_score",
		Description: "Force a session's score. The snake's body length is resynced to match.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
				"score": map[string]interface{}{
					"type":        "integer",
					"description": "New score (clamped at 0)",
				},
			},
			Required: []string{"session_id", "score"},
		},
	}, c.handleSetScore)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "toggle_invulnerability",
		Description: "Flip a session's invulnerability override. While enabled, walls wrap and self-collisions are forgiven.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleToggleInvulnerability)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "replay_game",
		Description: "Restart a session's game, keeping grid size and tick interval",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleReplay)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "remove_session",
		Description: "Remove a session, stopping its game loop",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session ID",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRemoveSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_presets",
		Description: "List available grid presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListPresets)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "server_stats",
		Description: "Aggregate statistics across all connected sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleServerStats)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get game rules and admin override semantics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// Tool handlers

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Connected Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "idle"
		if s.GameState != nil {
			if s.GameState.Running {
				status = "playing"
			} else {
				status = "game over"
			}
		}
		fmt.Fprintf(&b, "- %s (%s, agent=%t, invulnerable=%t, games=%d, best=%d)\n",
			s.ID, status, s.AgentEnabled, s.Invulnerable,
			s.Statistics.Games, s.Statistics.BestScore)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")

	var info service.SessionInfo
	if err := c.apiCall("GET", "/api/sessions/"+sessionID, nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")

	var state engine.GameState
	if err := c.apiCall("GET", fmt.Sprintf("/api/sessions/%s/state", sessionID), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleSetScore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")
	score := intArg(request, "score")

	var state engine.GameState
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/score", sessionID),
		map[string]int{"score": score}, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Score set to %d (body length %d)\n\n%s",
		state.Score, len(state.Snake), formatGameState(&state))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleToggleInvulnerability(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")

	var resp map[string]bool
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/invulnerability", sessionID), nil, &resp)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if resp["enabled"] {
		return mcp.NewToolResultText("Invulnerability enabled: walls wrap, self-collisions forgiven."), nil
	}
	return mcp.NewToolResultText("Invulnerability disabled: normal rules apply."), nil
}

func (c *Client) handleReplay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")

	var response struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	err := c.apiCall("POST", fmt.Sprintf("/api/sessions/%s/replay", sessionID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleRemoveSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := stringArg(request, "session_id")

	var resp map[string]string
	err := c.apiCall("DELETE", "/api/sessions/"+sessionID, nil, &resp)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(resp["message"]), nil
}

func (c *Client) handleListPresets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var presets []config.PresetInfo
	if err := c.apiCall("GET", "/api/presets", nil, &presets); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Presets:\n\n")
	for _, p := range presets {
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Grid: %dx%d, Tick: %.0fms\n\n",
			p.Name, p.PresetID, p.Description, p.GridWidth, p.GridHeight, p.TickSeconds*1000)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleServerStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := c.apiCall("GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var playing, withAgent, totalGames, bestScore int
	for _, s := range response.Sessions {
		if s.GameState != nil && s.GameState.Running {
			playing++
		}
		if s.AgentEnabled {
			withAgent++
		}
		totalGames += s.Statistics.Games
		if s.Statistics.BestScore > bestScore {
			bestScore = s.Statistics.BestScore
		}
	}

	var b strings.Builder
	b.WriteString("Server Statistics\n\n")
	fmt.Fprintf(&b, "Sessions: %d (%d playing, %d with agents)\n", response.Count, playing, withAgent)
	fmt.Fprintf(&b, "Games played: %d\n", totalGames)
	fmt.Fprintf(&b, "Best score: %d\n", bestScore)
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Snake Arcade Backend - Rules and Admin Semantics

GAME RULES:
- Each connected player runs an independent snake game on its own grid.
- The snake advances one cell per tick in its current heading.
- Eating food grows the snake by one and scores one point.
- Hitting a wall or the snake's own body ends the game.
- Direction changes are queued and applied on the next tick; direct
  reversals are ignored while the snake is longer than one cell.

BOARD LEGEND:
- H - snake head
- o - snake body
- * - food
- . - empty cell

ADMIN OVERRIDES:
- set_score: forces the score; the body is padded or truncated so its
  length is always score+1.
- toggle_invulnerability: while enabled, each tick wraps the head across
  walls (torus-style) and truncates the body at the first
  self-intersection instead of ending the game.
- replay_game: restarts the game in place, keeping grid size and tick
  interval. Lifetime statistics (games, best score, average) survive.

SESSIONS:
- Sessions are per websocket connection and removed on disconnect.
- Each session may enable a learning agent that plays and trains online.
- Statistics accumulate across games within one session.`

	return mcp.NewToolResultText(instructions), nil
}

// Argument helpers

func stringArg(request mcp.CallToolRequest, key string) string {
	args, _ := request.Params.Arguments.(map[string]interface{})
	v, _ := args[key].(string)
	return v
}

func intArg(request mcp.CallToolRequest, key string) int {
	args, _ := request.Params.Arguments.(map[string]interface{})
	v, _ := args[key].(float64)
	return int(v)
}

// Formatting helpers

func formatSessionInfo(info *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nConnected: %s\nAgent: %t\nInvulnerable: %t\n",
		info.ID, info.ConnectedAt.Format("2006-01-02 15:04:05"),
		info.AgentEnabled, info.Invulnerable)
	fmt.Fprintf(&b, "Statistics: games=%d best=%d avg=%.1f\n\n",
		info.Statistics.Games, info.Statistics.BestScore, info.Statistics.AvgScore)
	b.WriteString(formatGameState(info.GameState))
	return b.String()
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game in progress"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Score: %d | Length: %d | Heading: %s | Tick: %.0fms\n",
		state.Score, len(state.Snake), state.Direction, state.TickSeconds*1000)
	if state.Invulnerable {
		b.WriteString("Invulnerability: ON\n")
	}
	b.WriteString("\n")

	body := make(map[engine.Position]bool, len(state.Snake))
	for _, seg := range state.Snake {
		body[seg] = true
	}
	var head engine.Position
	hasHead := len(state.Snake) > 0
	if hasHead {
		head = state.Snake[0]
	}

	for y := 0; y < state.GridHeight; y++ {
		for x := 0; x < state.GridWidth; x++ {
			p := engine.Position{X: x, Y: y}
			switch {
			case hasHead && p == head:
				b.WriteString("H")
			case body[p]:
				b.WriteString("o")
			case p == state.Food:
				b.WriteString("*")
			default:
				b.WriteString(".")
			}
		}
		b.WriteString("\n")
	}

	if !state.Running {
		b.WriteString("\nGAME OVER")
	}
	return b.String()
}
