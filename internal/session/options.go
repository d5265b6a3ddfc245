package session

import (
	"time"

	"github.com/Iron-Ham/hivecouncil/internal/council"
	"github.com/Iron-Ham/hivecouncil/internal/event"
	"github.com/Iron-Ham/hivecouncil/internal/logging"
	"github.com/Iron-Ham/hivecouncil/internal/stream"
)

// DefaultInactivityTimeout is how long a running session may go without an
// event before it is failed as stalled.
const DefaultInactivityTimeout = 5 * time.Minute

// remoteControlTimeout bounds a best-effort pause/resume notification.
const remoteControlTimeout = 10 * time.Second

// commandBuffer is the capacity of the pause/resume command channel.
const commandBuffer = 16

// Option configures a Controller.
type Option func(*config)

type config struct {
	inactivityTimeout time.Duration
	maxRecordBytes    int
	limits            council.Limits
	logger            *logging.Logger
	bus               *event.Bus
}

func defaultConfig() config {
	return config{
		inactivityTimeout: DefaultInactivityTimeout,
		maxRecordBytes:    stream.DefaultMaxRecordBytes,
		limits:            council.DefaultLimits(),
	}
}

// WithInactivityTimeout sets the stall window. Zero disables stall detection.
func WithInactivityTimeout(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.inactivityTimeout = d
		}
	}
}

// WithMaxRecordBytes bounds the decoder's reassembly buffer.
func WithMaxRecordBytes(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxRecordBytes = n
		}
	}
}

// WithLimits sets the caller-side limits Start validates against.
func WithLimits(l council.Limits) Option {
	return func(c *config) {
		c.limits = l
	}
}

// WithLogger sets the logger for the controller.
func WithLogger(logger *logging.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithBus makes the controller publish on an existing bus instead of its own.
func WithBus(bus *event.Bus) Option {
	return func(c *config) {
		c.bus = bus
	}
}
