package transport

import (
	"errors"
	"fmt"
	"net/netip"
)

var (
	// ErrNoMessage reports an empty receive queue. It is the normal
	// end-of-drain signal, not a fault.
	ErrNoMessage = errors.New("transport: no message available")
	ErrClosed    = errors.New("transport: gateway closed")
)

// DecodeError reports a datagram that arrived but failed to parse. The
// sender is carried so rejections can be logged without admitting a session.
type DecodeError struct {
	Sender netip.AddrPort
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("transport: undecodable datagram from %s: %v", e.Sender, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
