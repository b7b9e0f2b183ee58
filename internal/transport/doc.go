// Package transport owns the datagram endpoint the warden speaks through.
//
// Ownership boundary:
// - binding and closing the UDP socket
// - non-blocking receive with decode of untrusted datagrams
// - fire-and-forget send of encoded server messages
//
// The gateway never blocks a tick: an empty receive queue is reported as
// ErrNoMessage, which callers use as their end-of-drain signal.
package transport
