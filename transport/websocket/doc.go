// Package websocket is the realtime transport: one persistent connection
// per player, carrying commands inbound and game events outbound.
//
// The Hub maps connection ids to clients and implements service.Notifier,
// so the game service can push snapshots and acks to the owning connection
// without knowing about sockets. Inbound frames are JSON command envelopes
//
//	{"event": "start_game", "data": {"grid_width": 20}}
//
// dispatched onto the game service; outbound frames use the same envelope
// shape. Each client runs the standard read/write pump pair with ping/pong
// keepalive; when the read pump exits the session is torn down, which
// cancels and awaits its game loop before the registry entry disappears.
package websocket
