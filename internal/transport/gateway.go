package transport

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"time"

	"github.com/danmuck/lodestone/internal/protocol"
)

// pollWindow bounds how long one TryReceive may wait on an empty queue.
// UDP reads cannot be made truly non-blocking through the net package, so
// the gateway uses an immediate deadline and maps the timeout to
// ErrNoMessage.
const pollWindow = time.Millisecond

// Gateway is the warden's single datagram endpoint. It owns the bound
// socket and a reusable receive buffer, so one goroutine drives it at a
// time.
type Gateway struct {
	conn *net.UDPConn
	buf  [protocol.MaxDatagramSize]byte
}

// Bind acquires the UDP socket on port across all interfaces. Failure here
// is fatal to startup; there is no steady-state rebind path.
func Bind(port uint16) (*Gateway, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: int(port)})
	if err != nil {
		return nil, fmt.Errorf("transport: bind port %d: %w", port, err)
	}
	return &Gateway{conn: conn}, nil
}

// LocalAddr reports the bound endpoint, useful when port 0 was requested.
func (g *Gateway) LocalAddr() netip.AddrPort {
	if g.conn == nil {
		return netip.AddrPort{}
	}
	addr, ok := g.conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return netip.AddrPort{}
	}
	return addr.AddrPort()
}

// TryReceive pulls at most one datagram off the socket without blocking the
// tick. It returns ErrNoMessage when the queue is empty, a *DecodeError when
// a datagram arrived but failed to parse, and the raw I/O error for genuine
// transport faults.
func (g *Gateway) TryReceive() (netip.AddrPort, *protocol.ClientToServer, error) {
	if g.conn == nil {
		return netip.AddrPort{}, nil, ErrClosed
	}
	if err := g.conn.SetReadDeadline(time.Now().Add(pollWindow)); err != nil {
		return netip.AddrPort{}, nil, fmt.Errorf("transport: set read deadline: %w", err)
	}
	n, sender, err := g.conn.ReadFromUDPAddrPort(g.buf[:])
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return netip.AddrPort{}, nil, ErrNoMessage
		}
		if errors.Is(err, net.ErrClosed) {
			return netip.AddrPort{}, nil, ErrClosed
		}
		return netip.AddrPort{}, nil, fmt.Errorf("transport: receive: %w", err)
	}

	msg, err := protocol.DecodeClientToServer(g.buf[:n])
	if err != nil {
		return sender, nil, &DecodeError{Sender: sender, Err: err}
	}
	return sender, msg, nil
}

// Send encodes msg and writes it to addr. Delivery is fire-and-forget; the
// OS accepting the write is the only confirmation.
func (g *Gateway) Send(addr netip.AddrPort, msg *protocol.ServerToClient) error {
	if g.conn == nil {
		return ErrClosed
	}
	buf, err := protocol.EncodeServerToClient(msg)
	if err != nil {
		return err
	}
	if _, err := g.conn.WriteToUDPAddrPort(buf, addr); err != nil {
		if errors.Is(err, net.ErrClosed) {
			return ErrClosed
		}
		return fmt.Errorf("transport: send to %s: %w", addr, err)
	}
	return nil
}

// Close releases the socket. Further calls report ErrClosed.
func (g *Gateway) Close() error {
	if g.conn == nil {
		return nil
	}
	err := g.conn.Close()
	g.conn = nil
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("transport: close: %w", err)
	}
	return nil
}
