// Package session owns per-peer server state and its retention rules.
//
// Ownership boundary:
// - client session bookkeeping (ack watermark, pending bodies, drop countdown)
// - the address-keyed registry and its capacity bound
// - acknowledgment-driven retention and timeout reaping
//
// The registry and sessions are lock-free and single-owner: the warden tick
// loop mutates them, and any concurrent surface snapshots through the owner's
// guard.
package session
