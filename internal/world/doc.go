// Package world holds the collaborators the warden core transports payloads
// for: the terrain state it broadcasts, the per-peer input store it forwards
// into, and the sqlite-backed snapshot store that survives restarts.
//
// The warden treats terrain bytes and input payloads as opaque; this package
// is where their shape actually lives.
package world
