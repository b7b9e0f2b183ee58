// Package protocol owns the Lodestone wire contract.
//
// Ownership boundary:
// - datagram headers for both wire directions
// - tagged body elements and their binary forms
// - encode/decode entry points with deterministic failure modes
package protocol
