package wire

import (
	"errors"

	"github.com/lithdew/bytesutil"
)

// HeaderSize is the fixed number of bytes preceding the payload: an 8-byte
// big-endian sequence number followed by an 8-byte big-endian acknowledgment
// number. There is no length field, no flags and no checksum.
const HeaderSize = 16

// ErrShortFrame is returned by UnmarshalSegment when a datagram is too small
// to hold a segment header.
var ErrShortFrame = errors.New("frame shorter than segment header")

type Segment struct {
	Seq  uint64 // byte offset of the first payload byte in the sender's stream
	Ack  uint64 // total contiguous bytes the sender has received from its peer
	Data []byte // payload
}

func (s Segment) AppendTo(dst []byte) []byte {
	dst = bytesutil.AppendUint64BE(dst, s.Seq)
	dst = bytesutil.AppendUint64BE(dst, s.Ack)
	dst = append(dst, s.Data...)
	return dst
}

// Len is the payload length in bytes. A segment with Len 0 is a pure
// acknowledgment and occupies no space in the stream.
func (s Segment) Len() int { return len(s.Data) }

// End is the byte offset one past the last payload byte.
func (s Segment) End() uint64 { return s.Seq + uint64(len(s.Data)) }

// UnmarshalSegment decodes a single datagram. Everything after the fixed
// header is taken verbatim as payload; the returned segment aliases buf.
func UnmarshalSegment(buf []byte) (Segment, error) {
	var seg Segment
	if len(buf) < HeaderSize {
		return seg, ErrShortFrame
	}
	seg.Seq, buf = bytesutil.Uint64BE(buf[:8]), buf[8:]
	seg.Ack, buf = bytesutil.Uint64BE(buf[:8]), buf[8:]
	seg.Data = buf
	return seg, nil
}
