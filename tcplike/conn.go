// Package tcplike provides a reliable, ordered byte stream between two
// fixed UDP endpoints. Payload is carried in segments addressed by byte
// offset, acknowledged cumulatively and retransmitted on timeout. There is
// no handshake, no teardown exchange and no congestion control beyond a
// fixed in-flight window.
package tcplike

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/btree"
	"github.com/valyala/bytebufferpool"

	"github.com/Feodosix/tcp-like-protocol/wire"
)

// ErrClosed is returned by Send and Receive after Close.
var ErrClosed = errors.New("connection closed")

// Conn is one endpoint of a reliable byte stream. A Conn is owned by a
// single goroutine: Send, Receive, Close and Stats share unsynchronized
// state and must never run concurrently.
//
// Progress is cooperative. Acknowledgments for outgoing data are only
// processed while Send or Receive is running, so an endpoint that stops
// calling into its connection also stops acknowledging its peer.
type Conn struct {
	transport Transport
	cfg       Config

	sent      uint64 // next stream offset to transmit
	delivered uint64 // peer's cumulative acknowledgment, prefix of sent
	received  uint64 // next contiguous stream offset expected from the peer

	sendWindow *btree.BTreeG[*inflight]
	recvWindow *btree.BTreeG[wire.Segment]

	delivery *bytebufferpool.ByteBuffer // contiguous bytes awaiting Receive
	off      int                        // consumed prefix of delivery

	stats Stats
}

// NewConn wraps an existing transport. Ownership of the transport passes to
// the connection; Close closes it.
func NewConn(t Transport, cfg Config) *Conn {
	return &Conn{
		transport:  t,
		cfg:        cfg.withDefaults(),
		sendWindow: newSendWindow(),
		recvWindow: newRecvWindow(),
		delivery:   bytebufferpool.Get(),
	}
}

// Dial binds a UDP socket on local, pins it to remote and returns the
// connection. There is no handshake: the stream exists as soon as both
// endpoints have dialed each other.
func Dial(local, remote string, cfg Config) (*Conn, error) {
	t, err := NewUDPTransport(local, remote)
	if err != nil {
		return nil, err
	}
	return NewConn(t, cfg), nil
}

// Send transmits data to the peer and blocks until every transmitted byte
// has been acknowledged or the peer has stayed silent for MaxLag
// consecutive ack timeouts. It returns the number of payload bytes handed
// to the transport. A short count with a nil error means the peer went
// unresponsive; the caller may retry the remainder (see SendAll).
func (c *Conn) Send(data []byte) (int, error) {
	if c.delivery == nil {
		return 0, ErrClosed
	}

	sent := 0
	lag := 0
	for lag < c.cfg.MaxLag && (len(data) > 0 || c.delivered < c.sent) {
		if len(data) > 0 && int(c.sent-c.delivered) <= c.cfg.Window {
			chunk := data
			if len(chunk) > c.cfg.MaxPayload {
				chunk = chunk[:c.cfg.MaxPayload]
			}
			n, err := c.transmit(wire.Segment{Seq: c.sent, Ack: c.received, Data: chunk})
			if err != nil {
				return sent, err
			}
			data = data[n:]
			sent += n
		} else {
			processed, err := c.pullOne(c.cfg.AckTimeout)
			if err != nil {
				return sent, err
			}
			if processed {
				lag = 0
			} else {
				lag++
			}
		}
		if err := c.resendOldest(); err != nil {
			return sent, err
		}
	}

	if len(data) > 0 {
		c.stats.PartialSends++
	}
	return sent, nil
}

// Receive blocks until n contiguous stream bytes are available and returns
// exactly n bytes. The wait is unbounded; closing the connection from
// another goroutine is the only way to abort it. On a transport or framing
// error the bytes drained so far are returned alongside the error.
func (c *Conn) Receive(n int) ([]byte, error) {
	if c.delivery == nil {
		return nil, ErrClosed
	}

	data := make([]byte, 0, n)
	for {
		data = c.drain(data, n)
		if len(data) >= n {
			return data, nil
		}
		if _, err := c.pullOne(0); err != nil {
			return data, err
		}
	}
}

// drain appends up to n-len(dst) buffered stream bytes to dst. The delivery
// buffer is recycled once fully consumed.
func (c *Conn) drain(dst []byte, n int) []byte {
	avail := c.delivery.B[c.off:]
	want := n - len(dst)
	if want > len(avail) {
		want = len(avail)
	}
	dst = append(dst, avail[:want]...)
	c.off += want
	c.stats.BytesDelivered += uint64(want)
	if c.off > 0 && c.off == len(c.delivery.B) {
		c.delivery.Reset()
		c.off = 0
	}
	return dst
}

// Close releases the transport, failing any Receive blocked in it from
// another goroutine. The connection must not be used afterwards.
func (c *Conn) Close() error {
	if c.delivery != nil {
		bytebufferpool.Put(c.delivery)
		c.delivery = nil
	}
	return c.transport.Close()
}

func (c *Conn) LocalAddr() net.Addr { return c.transport.LocalAddr() }

func (c *Conn) RemoteAddr() net.Addr { return c.transport.RemoteAddr() }

// transmit encodes seg and hands it to the transport as one datagram. A
// segment at the sent cursor advances the cursor by however many payload
// bytes the transport accepted; transmitting past the cursor would tear a
// hole in the stream and panics. Payload-bearing segments are retained in
// the send window, truncated to the accepted length, with a fresh deadline.
func (c *Conn) transmit(seg wire.Segment) (int, error) {
	scratch := bytebufferpool.Get()
	scratch.B = seg.AppendTo(scratch.B[:0])
	n, err := c.transport.Transmit(scratch.B)
	bytebufferpool.Put(scratch)
	if err != nil {
		return 0, err
	}
	accepted := n - wire.HeaderSize
	if accepted < 0 {
		accepted = 0
	} else if accepted > seg.Len() {
		accepted = seg.Len()
	}

	switch {
	case seg.Seq == c.sent:
		c.sent += uint64(accepted)
		c.stats.BytesSent += uint64(accepted)
	case seg.Seq > c.sent:
		panic(fmt.Sprintf("tcplike: transmit at offset %d ahead of sent cursor %d", seg.Seq, c.sent))
	}

	if seg.Len() > 0 {
		retained := append([]byte(nil), seg.Data[:accepted]...)
		c.sendWindow.ReplaceOrInsert(&inflight{
			seg:    wire.Segment{Seq: seg.Seq, Ack: seg.Ack, Data: retained},
			sentAt: time.Now(),
		})
	}
	c.stats.SegmentsSent++
	return accepted, nil
}

// pullOne reads and processes at most one datagram. It reports whether a
// datagram was processed; an expired receive deadline is ordinary peer
// silence and reports false with a nil error. A zero timeout blocks.
func (c *Conn) pullOne(timeout time.Duration) (bool, error) {
	scratch := bytebufferpool.Get()
	defer bytebufferpool.Put(scratch)
	size := c.cfg.MaxPayload + wire.HeaderSize
	if cap(scratch.B) < size {
		scratch.B = make([]byte, size)
	} else {
		scratch.B = scratch.B[:size]
	}

	n, err := c.transport.Receive(scratch.B, timeout)
	if err != nil {
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			return false, nil
		}
		return false, err
	}

	seg, err := wire.UnmarshalSegment(scratch.B[:n])
	if err != nil {
		return false, err
	}
	c.stats.SegmentsReceived++

	if seg.Len() > 0 {
		seg.Data = append([]byte(nil), seg.Data...) // must not alias the pooled scratch
		c.recvWindow.ReplaceOrInsert(seg)
		if err := c.shiftRecvWindow(); err != nil {
			return false, err
		}
	}

	if seg.Ack > c.delivered {
		c.delivered = seg.Ack
		c.shiftSendWindow()
	}
	return true, nil
}

// shiftRecvWindow drains every segment that has become contiguous with the
// received cursor into the delivery buffer. Segments entirely below the
// cursor are stale retransmissions and are dropped; a segment past the
// cursor is a gap and stays buffered. Whenever the window held anything at
// all, an explicit empty acknowledgment is sent so the peer learns the
// cursor even when it did not move.
func (c *Conn) shiftRecvWindow() error {
	acked := false
	for {
		seg, ok := c.recvWindow.Min()
		if !ok {
			break
		}
		acked = true
		if seg.Seq > c.received {
			break
		}
		c.recvWindow.DeleteMin()
		if seg.Seq < c.received {
			c.stats.StaleSegments++
			continue
		}
		c.delivery.Write(seg.Data)
		c.received += uint64(seg.Len())
		c.stats.BytesReceived += uint64(seg.Len())
	}
	if !acked {
		return nil
	}
	c.stats.AcksEmitted++
	_, err := c.transmit(wire.Segment{Seq: c.sent, Ack: c.received})
	return err
}

// shiftSendWindow drops in-flight segments the cumulative acknowledgment
// has moved past.
func (c *Conn) shiftSendWindow() {
	for {
		entry, ok := c.sendWindow.Min()
		if !ok || entry.seg.Seq >= c.delivered {
			return
		}
		c.sendWindow.DeleteMin()
	}
}

// resendOldest retransmits the oldest in-flight segment once its ack
// deadline has lapsed. Only one candidate is examined per call, so a stall
// is paced at one retransmission per loop iteration rather than a burst.
func (c *Conn) resendOldest() error {
	entry, ok := c.sendWindow.Min()
	if !ok || time.Since(entry.sentAt) <= c.cfg.AckTimeout {
		return nil
	}
	c.sendWindow.DeleteMin()
	c.stats.Retransmits++
	_, err := c.transmit(entry.seg)
	return err
}
