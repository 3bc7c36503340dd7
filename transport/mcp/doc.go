// Package mcp exposes the backend to MCP clients as a thin proxy over the
// REST API.
//
// The Client registers observation and admin tools (session listing, state
// inspection, score overrides, invulnerability, replay) and forwards each
// call to the HTTP API, formatting the responses as text with an ASCII
// rendering of the board. It holds no game state of its own, so it can run
// either inside the server process or as a separate stdio process pointed
// at a running server.
package mcp
