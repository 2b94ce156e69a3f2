package galea

import (
	"fmt"
	"time"

	"github.com/openbci/go-galea/logger"
	"github.com/openbci/go-galea/sink"
	"github.com/openbci/go-galea/transport"
)

// Default configuration values for a Galea serial session.
const (
	// DefaultTimeout is the transport read timeout applied when the
	// configured value falls outside [MinTimeout, MaxTimeout].
	DefaultTimeout = 3 * time.Second
	MinTimeout     = 1 * time.Second
	MaxTimeout     = 600 * time.Second

	// DefaultBaudRate is the board's custom streaming rate.
	DefaultBaudRate = 921600

	// DefaultSyncWait bounds how long Start waits for the first valid
	// frame before reporting a synchronization timeout.
	DefaultSyncWait = 3 * time.Second

	// DefaultDrainAttempts caps the single-byte drain reads Stop performs
	// to flush OS-level buffering after the stop command.
	DefaultDrainAttempts = 40000

	// DefaultBufferSize is the row capacity of the default ring buffer.
	DefaultBufferSize = 4500
)

// Config holds all configuration for a Galea session.
type Config struct {
	port          string
	timeout       time.Duration
	baudRate      int
	syncWait      time.Duration
	drainAttempts int
	bufferSize    int

	layout   *FrameLayout
	channels *ChannelMap

	transport transport.Transport
	out       sink.Sink
	logger    logger.Logger
}

// NewConfig creates a session configuration for the named serial port.
//
// An out-of-range timeout is silently clamped to the default, matching
// the board's reference behavior. The port may only be empty when a
// custom transport is supplied via WithTransport.
func NewConfig(port string, opts ...Option) (*Config, error) {
	cfg := &Config{
		port:          port,
		timeout:       DefaultTimeout,
		baudRate:      DefaultBaudRate,
		syncWait:      DefaultSyncWait,
		drainAttempts: DefaultDrainAttempts,
		bufferSize:    DefaultBufferSize,
		layout:        DefaultFrameLayout(),
		channels:      DefaultChannelMap(),
		logger:        logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.port == "" && cfg.transport == nil {
		return nil, ErrPortNotSpecified
	}

	return cfg, nil
}

// Port returns the configured serial port name.
func (cfg *Config) Port() string { return cfg.port }

// Timeout returns the transport read timeout.
func (cfg *Config) Timeout() time.Duration { return cfg.timeout }

// BaudRate returns the configured baud rate.
func (cfg *Config) BaudRate() int { return cfg.baudRate }

// Layout returns the frame geometry.
func (cfg *Config) Layout() *FrameLayout { return cfg.layout }

// Channels returns the row layout.
func (cfg *Config) Channels() *ChannelMap { return cfg.channels }

// GetLogger returns the configured logger.
func (cfg *Config) GetLogger() logger.Logger { return cfg.logger }

// --- Option ---

// Option is a functional option for configuring a Config.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithTimeout sets the transport read timeout. Values outside
// [MinTimeout, MaxTimeout] are clamped to DefaultTimeout rather than
// rejected.
func WithTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < MinTimeout || d > MaxTimeout {
			d = DefaultTimeout
		}
		cfg.timeout = d

		return nil
	})
}

// WithBaudRate overrides the custom baud rate applied during Prepare.
func WithBaudRate(rate int) Option {
	return optFunc(func(cfg *Config) error {
		if rate <= 0 {
			return fmt.Errorf("galea: invalid baud rate %d", rate)
		}
		cfg.baudRate = rate

		return nil
	})
}

// WithSyncWait overrides how long Start waits for the first valid frame.
func WithSyncWait(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d <= 0 {
			return fmt.Errorf("galea: invalid sync wait %v", d)
		}
		cfg.syncWait = d

		return nil
	})
}

// WithDrainAttempts overrides the drain-read cap applied by Stop.
func WithDrainAttempts(n int) Option {
	return optFunc(func(cfg *Config) error {
		if n <= 0 {
			return fmt.Errorf("galea: invalid drain attempts %d", n)
		}
		cfg.drainAttempts = n

		return nil
	})
}

// WithBufferSize sets the row capacity of the default ring buffer.
// Ignored when WithSink supplies a custom primary sink.
func WithBufferSize(rows int) Option {
	return optFunc(func(cfg *Config) error {
		if rows <= 0 {
			return fmt.Errorf("galea: invalid buffer size %d", rows)
		}
		cfg.bufferSize = rows

		return nil
	})
}

// WithFrameLayout supplies an alternative frame geometry, for device
// variants sharing the dense/compact package shape.
func WithFrameLayout(layout *FrameLayout) Option {
	return optFunc(func(cfg *Config) error {
		if layout == nil {
			return fmt.Errorf("galea: frame layout is nil")
		}
		cfg.layout = layout

		return nil
	})
}

// WithChannelMap supplies an alternative row layout.
func WithChannelMap(cm *ChannelMap) Option {
	return optFunc(func(cfg *Config) error {
		if cm == nil {
			return fmt.Errorf("galea: channel map is nil")
		}
		cfg.channels = cm

		return nil
	})
}

// WithTransport supplies the transport directly instead of opening a
// serial port, e.g. a transport.Pipe in tests.
func WithTransport(tr transport.Transport) Option {
	return optFunc(func(cfg *Config) error {
		if tr == nil {
			return fmt.Errorf("galea: transport is nil")
		}
		cfg.transport = tr

		return nil
	})
}

// WithSink supplies the primary output sink for decoded rows. Defaults
// to a ring buffer of WithBufferSize rows.
func WithSink(out sink.Sink) Option {
	return optFunc(func(cfg *Config) error {
		if out == nil {
			return fmt.Errorf("galea: sink is nil")
		}
		cfg.out = out

		return nil
	})
}

// WithLogger sets the logger for the session and its acquisition loop.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return fmt.Errorf("galea: logger is nil")
		}
		cfg.logger = l

		return nil
	})
}
