package tcplike

import (
	"errors"
	"time"

	"github.com/jpillora/backoff"
)

// ErrPeerUnresponsive is returned by SendAll when the retry budget runs out
// with bytes still untransmitted.
var ErrPeerUnresponsive = errors.New("peer unresponsive")

// MaxSendAttempts bounds consecutive zero-progress Send rounds in SendAll.
const MaxSendAttempts = 8

// SendAll retries Send until every byte of data has been handed to the
// transport. A round that makes no progress sleeps with jittered backoff
// before the next attempt; MaxSendAttempts such rounds in a row give up
// with ErrPeerUnresponsive. Either way the returned count is the total
// number of bytes transmitted.
func (c *Conn) SendAll(data []byte) (int, error) {
	b := &backoff.Backoff{
		Factor: 1.25,
		Jitter: true,
		Min:    c.cfg.AckTimeout,
		Max:    16 * c.cfg.AckTimeout,
	}

	total := 0
	attempts := 0
	for len(data) > 0 {
		n, err := c.Send(data)
		total += n
		if err != nil {
			return total, err
		}
		data = data[n:]
		if n > 0 {
			attempts = 0
			b.Reset()
			continue
		}
		if attempts++; attempts >= MaxSendAttempts {
			return total, ErrPeerUnresponsive
		}
		time.Sleep(b.Duration())
	}
	return total, nil
}
