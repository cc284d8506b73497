package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSegmentRoundTrip(t *testing.T) {
	segments := []Segment{
		{},
		{Seq: 1, Ack: 2},
		{Seq: 0, Ack: 0, Data: []byte{0x00}},
		{Seq: 42, Ack: 1337, Data: []byte("hello world!")},
		{Seq: ^uint64(0), Ack: ^uint64(0), Data: bytes.Repeat([]byte{0xAB}, 1024)},
	}

	for _, seg := range segments {
		frame := seg.AppendTo(nil)
		require.Equal(t, HeaderSize+seg.Len(), len(frame))

		decoded, err := UnmarshalSegment(frame)
		require.NoError(t, err)
		require.Equal(t, seg.Seq, decoded.Seq)
		require.Equal(t, seg.Ack, decoded.Ack)
		require.Equal(t, seg.Len(), decoded.Len())
		require.True(t, bytes.Equal(seg.Data, decoded.Data))
	}
}

func TestSegmentWireLayout(t *testing.T) {
	seg := Segment{
		Seq:  0x0102030405060708,
		Ack:  0x090A0B0C0D0E0F10,
		Data: []byte{0xCA, 0xFE},
	}

	expected := []byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
		0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F, 0x10,
		0xCA, 0xFE,
	}
	require.Equal(t, expected, seg.AppendTo(nil))
}

func TestSegmentAppendToKeepsPrefix(t *testing.T) {
	prefix := []byte("prefix")
	frame := Segment{Seq: 7, Ack: 9}.AppendTo(prefix)
	require.True(t, bytes.HasPrefix(frame, prefix))
	require.Equal(t, len(prefix)+HeaderSize, len(frame))
}

func TestUnmarshalSegmentShortFrame(t *testing.T) {
	for size := 0; size < HeaderSize; size++ {
		_, err := UnmarshalSegment(make([]byte, size))
		require.Equal(t, ErrShortFrame, err)
	}

	seg, err := UnmarshalSegment(make([]byte, HeaderSize))
	require.NoError(t, err)
	require.Equal(t, 0, seg.Len())
}

func TestSegmentEnd(t *testing.T) {
	require.EqualValues(t, 0, Segment{}.End())
	require.EqualValues(t, 30, Segment{Seq: 20, Data: make([]byte, 10)}.End())
}
