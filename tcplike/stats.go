package tcplike

// Stats are cumulative counters for one connection. They share the
// connection's single-owner contract: read them from the goroutine that
// drives the connection.
type Stats struct {
	SegmentsSent     uint64 // datagrams handed to the transport, retransmits included
	SegmentsReceived uint64 // datagrams decoded off the transport
	BytesSent        uint64 // fresh payload bytes accepted by the transport
	BytesReceived    uint64 // payload bytes folded into the contiguous stream
	BytesDelivered   uint64 // stream bytes handed to the application
	Retransmits      uint64 // in-flight segments re-sent after an expired ack deadline
	AcksEmitted      uint64 // explicit zero-payload acknowledgments
	StaleSegments    uint64 // arrivals at offsets already delivered
	PartialSends     uint64 // Send calls that gave up on an unresponsive peer
}

// Stats returns a copy of the connection's counters.
func (c *Conn) Stats() Stats { return c.stats }
