// Package warden is the authoritative Lodestone server core.
//
// Ownership boundary:
// - the two tick entry points the driver loop invokes (simulation, network)
// - inbound integration: admission, freshness, pong/input translation
// - outbound flush, post-send retention, and session reaping
// - service lifecycle (bind/load at start, save/close at stop) and the
//   admin HTTP surface layered over read-only snapshots
//
// The core never schedules itself: cadence belongs to the Service loop, and
// everything under it is synchronous per tick.
package warden
