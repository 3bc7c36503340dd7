// Command snakectl is an operator CLI for a running backend. It talks to the
// REST API: list and inspect sessions, render boards, and apply admin
// overrides (score, invulnerability, replay) from the terminal.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/snakearcade/backend/game/config"
	"github.com/snakearcade/backend/game/engine"
	"github.com/snakearcade/backend/game/service"
)

func main() {
	cmd := &cli.Command{
		Name:  "snakectl",
		Usage: "Operator CLI for the Snake Arcade Backend REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Value: "http://localhost:8080",
				Usage: "Base URL of the backend API",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "sessions",
				Usage: "List connected sessions",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Show at most N sessions",
					},
				},
				Action: runSessions,
			},
			{
				Name:      "show",
				Usage:     "Show one session's details and statistics",
				ArgsUsage: "<session-id>",
				Action:    runShow,
			},
			{
				Name:      "state",
				Usage:     "Render a session's board",
				ArgsUsage: "<session-id>",
				Action:    runState,
			},
			{
				Name:  "score",
				Usage: "Admin score overrides",
				Commands: []*cli.Command{
					{
						Name:      "set",
						Usage:     "Force the score (body length follows)",
						ArgsUsage: "<session-id> <score>",
						Action:    runScoreSet,
					},
					{
						Name:      "adjust",
						Usage:     "Add a delta to the score (may be negative)",
						ArgsUsage: "<session-id> <delta>",
						Action:    runScoreAdjust,
					},
				},
			},
			{
				Name:      "invuln",
				Usage:     "Toggle a session's invulnerability override",
				ArgsUsage: "<session-id>",
				Action:    runInvuln,
			},
			{
				Name:      "replay",
				Usage:     "Restart a session's game in place",
				ArgsUsage: "<session-id>",
				Action:    runReplay,
			},
			{
				Name:      "remove",
				Usage:     "Remove a session, stopping its game",
				ArgsUsage: "<session-id>",
				Action:    runRemove,
			},
			{
				Name:   "presets",
				Usage:  "List available grid presets",
				Action: runPresets,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// apiClient is a minimal JSON client for the backend API.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(cmd *cli.Command) *apiClient {
	return &apiClient{
		baseURL: cmd.String("addr"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *apiClient) call(method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
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

// requireArg returns positional argument i or an error naming it.
func requireArg(cmd *cli.Command, i int, name string) (string, error) {
	v := cmd.Args().Get(i)
	if v == "" {
		return "", fmt.Errorf("missing required argument: %s", name)
	}
	return v, nil
}

func runSessions(ctx context.Context, cmd *cli.Command) error {
	client := newAPIClient(cmd)

	path := "/api/sessions"
	if limit := cmd.Int("limit"); limit > 0 {
		path += "?limit=" + strconv.Itoa(int(limit))
	}

	var resp struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}
	if err := client.call("GET", path, nil, &resp); err != nil {
		return err
	}

	fmt.Printf("Sessions: %d\n", resp.Count)
	for _, s := range resp.Sessions {
		status := "idle"
		if s.GameState != nil {
			if s.GameState.Running {
				status = "playing"
			} else {
				status = "game over"
			}
		}
		fmt.Printf("  %-24s %-10s agent=%-5t invuln=%-5t games=%d best=%d\n",
			s.ID, status, s.AgentEnabled, s.Invulnerable,
			s.Statistics.Games, s.Statistics.BestScore)
	}
	return nil
}

func runShow(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, 0, "session-id")
	if err != nil {
		return err
	}

	var info service.SessionInfo
	if err := newAPIClient(cmd).call("GET", "/api/sessions/"+id, nil, &info); err != nil {
		return err
	}

	fmt.Printf("Session:      %s\n", info.ID)
	fmt.Printf("Connected:    %s\n", info.ConnectedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Agent:        %t\n", info.AgentEnabled)
	fmt.Printf("Invulnerable: %t\n", info.Invulnerable)
	fmt.Printf("Statistics:   games=%d best=%d total=%d avg=%.1f\n",
		info.Statistics.Games, info.Statistics.BestScore,
		info.Statistics.TotalScore, info.Statistics.AvgScore)
	if info.GameState != nil {
		fmt.Println()
		printBoard(info.GameState)
	}
	return nil
}

func runState(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, 0, "session-id")
	if err != nil {
		return err
	}

	var state engine.GameState
	if err := newAPIClient(cmd).call("GET", "/api/sessions/"+id+"/state", nil, &state); err != nil {
		return err
	}
	printBoard(&state)
	return nil
}

func runScoreSet(ctx context.Context, cmd *cli.Command) error {
	return postScore(cmd, "score")
}

func runScoreAdjust(ctx context.Context, cmd *cli.Command) error {
	return postScore(cmd, "delta")
}

func postScore(cmd *cli.Command, field string) error {
	id, err := requireArg(cmd, 0, "session-id")
	if err != nil {
		return err
	}
	raw, err := requireArg(cmd, 1, field)
	if err != nil {
		return err
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", field, raw, err)
	}

	var state engine.GameState
	err = newAPIClient(cmd).call("POST", "/api/sessions/"+id+"/score",
		map[string]int{field: value}, &state)
	if err != nil {
		return err
	}

	fmt.Printf("Score is now %d (body length %d)\n", state.Score, len(state.Snake))
	return nil
}

func runInvuln(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, 0, "session-id")
	if err != nil {
		return err
	}

	var resp map[string]bool
	err = newAPIClient(cmd).call("POST", "/api/sessions/"+id+"/invulnerability", nil, &resp)
	if err != nil {
		return err
	}

	if resp["enabled"] {
		fmt.Println("Invulnerability enabled: walls wrap, self-collisions forgiven")
	} else {
		fmt.Println("Invulnerability disabled: normal rules apply")
	}
	return nil
}

func runReplay(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, 0, "session-id")
	if err != nil {
		return err
	}

	var resp struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	err = newAPIClient(cmd).call("POST", "/api/sessions/"+id+"/replay", nil, &resp)
	if err != nil {
		return err
	}

	fmt.Println(resp.Message)
	if resp.State != nil {
		printBoard(resp.State)
	}
	return nil
}

func runRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, 0, "session-id")
	if err != nil {
		return err
	}

	var resp map[string]string
	err = newAPIClient(cmd).call("DELETE", "/api/sessions/"+id, nil, &resp)
	if err != nil {
		return err
	}
	fmt.Println(resp["message"])
	return nil
}

func runPresets(ctx context.Context, cmd *cli.Command) error {
	var presets []config.PresetInfo
	if err := newAPIClient(cmd).call("GET", "/api/presets", nil, &presets); err != nil {
		return err
	}

	for _, p := range presets {
		fmt.Printf("%-16s %3dx%-3d tick=%3.0fms  %s\n",
			p.PresetID, p.GridWidth, p.GridHeight, p.TickSeconds*1000, p.Description)
	}
	return nil
}

// printBoard renders the grid with H for the head, o for body, * for food.
func printBoard(state *engine.GameState) {
	fmt.Printf("Score: %d | Length: %d | Heading: %s | Tick: %.0fms\n",
		state.Score, len(state.Snake), state.Direction, state.TickSeconds*1000)
	if state.Invulnerable {
		fmt.Println("Invulnerability: ON")
	}
	fmt.Println()

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
				fmt.Print("H")
			case body[p]:
				fmt.Print("o")
			case p == state.Food:
				fmt.Print("*")
			default:
				fmt.Print(".")
			}
		}
		fmt.Println()
	}

	if !state.Running {
		fmt.Println("\nGAME OVER")
	}
}
