package tcplike

import (
	"time"

	"github.com/google/btree"

	"github.com/Feodosix/tcp-like-protocol/wire"
)

// inflight is a transmitted, not yet acknowledged segment retained for
// retransmission.
type inflight struct {
	seg    wire.Segment
	sentAt time.Time
}

// Both windows order segments by sequence number alone. Inserting a segment
// whose sequence number is already resident replaces the old entry, so a
// window never holds two segments for the same stream offset.

func newSendWindow() *btree.BTreeG[*inflight] {
	return btree.NewG[*inflight](2, func(a, b *inflight) bool { return a.seg.Seq < b.seg.Seq })
}

func newRecvWindow() *btree.BTreeG[wire.Segment] {
	return btree.NewG[wire.Segment](2, func(a, b wire.Segment) bool { return a.Seq < b.Seq })
}
