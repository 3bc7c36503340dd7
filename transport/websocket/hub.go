package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/snakearcade/backend/game/service"
	"github.com/snakearcade/backend/game/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		// TODO: Configure this for production
		return true
	},
}

// Message is the outbound event envelope.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Command is the inbound envelope. Data stays raw until the event name
// picks its shape.
type Command struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Client is one websocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	connID string

	// Serializes sends on the channel against its close. Senders hold the
	// hub's read lock, closers its write lock, so without this a send
	// racing a close would panic.
	sendMu sync.Mutex
	closed bool
}

// enqueue queues one frame for the write pump. It returns false only when
// the client is live but its buffer is full; frames for an already closed
// client are silently dropped.
func (c *Client) enqueue(data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel exactly once, flushing the write pump
// out.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Hub maintains the set of active clients, one per connection id, and
// routes service notifications back to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	svc     service.GameService
}

// NewHub creates an empty hub. Bind the game service before serving.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Bind attaches the game service. Separate from NewHub because the hub is
// also the service's Notifier.
func (h *Hub) Bind(svc service.GameService) {
	h.svc = svc
}

// Notify implements service.Notifier: it marshals the event envelope and
// queues it on the owning connection. Events for unknown or congested
// connections are dropped.
func (h *Hub) Notify(connID, event string, payload any) {
	data, err := json.Marshal(Message{Event: event, Data: payload})
	if err != nil {
		log.Printf("[ws] failed to marshal %s event: %v", event, err)
		return
	}

	h.mu.RLock()
	client, ok := h.clients[connID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	if !client.enqueue(data) {
		// Send buffer full; the write pump is stuck or gone. Tear the
		// session down asynchronously: Notify runs inside the tick loop,
		// and Disconnect waits for that loop to finish.
		if h.drop(client) {
			go func() {
				if err := h.svc.Disconnect(context.Background(), client.connID); err != nil {
					log.Printf("[ws] disconnect %s: %v", client.connID, err)
				}
			}()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades an HTTP request into a game connection. The connection
// id comes from the sid query parameter when a client reconnects with one,
// otherwise a fresh id is generated.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}

	connID := r.URL.Query().Get("sid")
	if connID == "" {
		connID = uuid.NewString()
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 256),
		connID: connID,
	}

	h.mu.Lock()
	if prev, ok := h.clients[connID]; ok {
		// A reconnect with the same id replaces the stale client.
		prev.closeSend()
		delete(h.clients, connID)
	}
	h.clients[connID] = client
	h.mu.Unlock()

	go client.writePump()

	if _, err := h.svc.Connect(r.Context(), connID); err != nil {
		if errors.Is(err, session.ErrSessionAlreadyExists) {
			// Reconnect: the session survives, only the socket is new.
			client.sendEvent("connected", map[string]string{"id": connID})
			if state, stateErr := h.svc.GetGameState(r.Context(), connID); stateErr == nil {
				client.sendEvent("game_state", state)
			}
		} else {
			client.sendEvent("error", map[string]string{"message": err.Error()})
		}
	}

	go client.readPump()
}

// drop removes a client and closes its send channel. It reports whether
// this client still owned its map entry; a stale client replaced by a
// reconnect does not, and must not tear the session down.
func (h *Hub) drop(client *Client) bool {
	h.mu.Lock()
	current, ok := h.clients[client.connID]
	owned := ok && current == client
	if owned {
		delete(h.clients, client.connID)
	}
	h.mu.Unlock()

	client.closeSend()
	return owned
}

// dispatch routes one inbound command to the game service. Failures go
// back to the client as events; a bad command never kills the connection.
func (h *Hub) dispatch(ctx context.Context, connID string, cmd Command) {
	var err error

	switch cmd.Event {
	case "start_game":
		var params service.StartParams
		if err = json.Unmarshal(orEmptyObject(cmd.Data), &params); err == nil {
			err = h.svc.StartGame(ctx, connID, params)
		}

	case "replay_game":
		err = h.svc.Replay(ctx, connID)

	case "change_direction":
		var data struct {
			Direction string `json:"direction"`
		}
		if err = json.Unmarshal(orEmptyObject(cmd.Data), &data); err == nil {
			err = h.svc.ChangeDirection(ctx, connID, data.Direction)
		}

	case "change_delay":
		var data struct {
			TickSeconds float64 `json:"game_tick"`
			TickMillis  float64 `json:"ms"`
		}
		if err = json.Unmarshal(orEmptyObject(cmd.Data), &data); err == nil {
			seconds := data.TickSeconds
			if seconds == 0 && data.TickMillis != 0 {
				seconds = data.TickMillis / 1000
			}
			err = h.svc.ChangeDelay(ctx, connID, seconds)
		}

	case "set_score":
		var data struct {
			Score int `json:"score"`
		}
		if err = json.Unmarshal(orEmptyObject(cmd.Data), &data); err == nil {
			err = h.svc.SetScore(ctx, connID, data.Score)
		}

	case "inc_score":
		err = h.svc.AdjustScore(ctx, connID, 1)

	case "dec_score":
		err = h.svc.AdjustScore(ctx, connID, -1)

	case "toggle_invulnerability":
		_, err = h.svc.ToggleInvulnerability(ctx, connID)

	case "save_model":
		var params service.ModelParams
		if err = json.Unmarshal(orEmptyObject(cmd.Data), &params); err == nil {
			if err = h.svc.SaveModel(ctx, connID, params); err != nil {
				h.Notify(connID, "model_error", map[string]string{"message": err.Error()})
				return
			}
		}

	case "load_model":
		var params service.ModelParams
		if err = json.Unmarshal(orEmptyObject(cmd.Data), &params); err == nil {
			if err = h.svc.LoadModel(ctx, connID, params); err != nil {
				h.Notify(connID, "model_error", map[string]string{"message": err.Error()})
				return
			}
		}

	case "get_state":
		var state any
		state, err = h.svc.GetGameState(ctx, connID)
		if err == nil {
			h.Notify(connID, "game_state", state)
		}

	default:
		log.Printf("[ws] unknown command %q from %s", cmd.Event, connID)
		return
	}

	if err != nil {
		h.Notify(connID, "error", map[string]string{"message": err.Error()})
	}
}

func orEmptyObject(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return []byte("{}")
	}
	return raw
}

// sendEvent queues one event directly on this client, bypassing the hub
// lookup. Used during connection setup.
func (c *Client) sendEvent(event string, payload any) {
	data, err := json.Marshal(Message{Event: event, Data: payload})
	if err != nil {
		return
	}
	c.enqueue(data)
}

// readPump pumps commands from the connection into the game service. When
// it exits the session is disconnected, which stops its game loop.
func (c *Client) readPump() {
	defer func() {
		if c.hub.drop(c) {
			if err := c.hub.svc.Disconnect(context.Background(), c.connID); err != nil {
				log.Printf("[ws] disconnect %s: %v", c.connID, err)
			}
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[ws] read error: %v", err)
			}
			break
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.sendEvent("error", map[string]string{"message": "malformed command"})
			continue
		}
		c.hub.dispatch(context.Background(), c.connID, cmd)
	}
}

// writePump pumps queued events to the connection and keeps it alive with
// pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current WebSocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
