package tcplike

import "time"

// Defaults for Config fields left at their zero value.
const (
	DefaultMaxPayload = 1024
	DefaultWindow     = 4096
	DefaultMaxLag     = 64
	DefaultAckTimeout = 10 * time.Millisecond
)

// Config carries the per-connection constants. They are fixed at
// construction and never negotiated with the peer, so both endpoints are
// expected to run with compatible values.
type Config struct {
	// MaxPayload is the largest payload carried by a single segment.
	// Larger sends are split into consecutive segments.
	MaxPayload int

	// Window caps the number of transmitted but unacknowledged payload
	// bytes. New payload is admitted while the in-flight total is at or
	// below the cap, so the total may overshoot it by one segment.
	Window int

	// MaxLag is the number of consecutive receive timeouts Send tolerates
	// before giving up and reporting partial progress.
	MaxLag int

	// AckTimeout is the retransmission deadline for the oldest in-flight
	// segment. It doubles as the poll timeout Send uses while waiting for
	// acknowledgments.
	AckTimeout time.Duration
}

func (cfg Config) withDefaults() Config {
	if cfg.MaxPayload <= 0 {
		cfg.MaxPayload = DefaultMaxPayload
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.MaxLag <= 0 {
		cfg.MaxLag = DefaultMaxLag
	}
	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = DefaultAckTimeout
	}
	return cfg
}
