package tcplike

import (
	"fmt"
	"net"
	"time"
)

// Transport moves single datagrams between two fixed endpoints. Addressing
// happens at construction: Transmit always targets the same pre-agreed peer
// and Receive yields the next datagram from it. Implementations report
// expired deadlines through net.Error so the engine can tell a quiet peer
// from a broken transport.
type Transport interface {
	// Transmit sends p as one datagram. It reports how many bytes were
	// accepted, which may be fewer than len(p).
	Transmit(p []byte) (int, error)

	// Receive fills p with the next datagram and reports its length. A
	// zero timeout blocks until a datagram arrives or the transport is
	// closed.
	Receive(p []byte, timeout time.Duration) (int, error)

	// Close releases the endpoint and fails any blocked Receive.
	Close() error

	LocalAddr() net.Addr
	RemoteAddr() net.Addr
}

// UDPTransport is the production Transport: a connected UDP socket pinned
// to a single peer. The kernel discards datagrams from any other source,
// which is exactly the static two-endpoint world the engine assumes.
type UDPTransport struct {
	conn *net.UDPConn
}

// NewUDPTransport binds local and connects it to remote. Neither address
// changes for the lifetime of the transport.
func NewUDPTransport(local, remote string) (*UDPTransport, error) {
	laddr, err := net.ResolveUDPAddr("udp", local)
	if err != nil {
		return nil, fmt.Errorf("resolve local address %q: %w", local, err)
	}
	raddr, err := net.ResolveUDPAddr("udp", remote)
	if err != nil {
		return nil, fmt.Errorf("resolve remote address %q: %w", remote, err)
	}
	conn, err := net.DialUDP("udp", laddr, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial %q from %q: %w", remote, local, err)
	}
	return &UDPTransport{conn: conn}, nil
}

func (t *UDPTransport) Transmit(p []byte) (int, error) {
	return t.conn.Write(p)
}

func (t *UDPTransport) Receive(p []byte, timeout time.Duration) (int, error) {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := t.conn.SetReadDeadline(deadline); err != nil {
		return 0, err
	}
	return t.conn.Read(p)
}

func (t *UDPTransport) Close() error { return t.conn.Close() }

func (t *UDPTransport) LocalAddr() net.Addr { return t.conn.LocalAddr() }

func (t *UDPTransport) RemoteAddr() net.Addr { return t.conn.RemoteAddr() }
