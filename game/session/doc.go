// Package session holds per-connection game state and the registry that
// tracks it.
//
// A Session is created when a client connects and removed when it
// disconnects. It bundles the client's simulation, its optional decision
// provider, admin override flags, lifetime play statistics, and the loop
// controller currently driving the simulation. One session maps to exactly
// one connection; sessions are never shared.
//
// The Registry is the authoritative map from connection id to Session.
// Removal is ordered: the session's loop is cancelled and awaited before the
// entry leaves the map, so no tick can observe a half-removed session.
package session
