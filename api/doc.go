// Package api is the HTTP surface: a REST admin/inspection API over the
// game service, plus the websocket upgrade endpoint.
//
// The REST routes exist for operators and tooling (the MCP bridge and the
// CLI both speak to them); players interact through the websocket. Admin
// mutations issued here flow through the same GameService as socket
// commands, so their effects are pushed to the owning connection
// immediately.
package api
