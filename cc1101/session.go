package cc1101

import (
	"context"
	"io"
	"time"
)

// Session represents a transfer session on one duplex link.
// It provides a high-level API for sending and receiving files.
type Session struct {
	// I/O
	link io.ReadWriter

	// Configuration
	config *Config

	// Callbacks
	callbacks *Callbacks

	// Internal state
	sender   *Sender
	receiver *Receiver

	// Context
	ctx context.Context

	// Logger
	logger Logger
}

// Config holds session configuration.
type Config struct {
	// MaxFragmentSize is the payload ceiling per fragment, in characters
	// of base64 text.
	MaxFragmentSize int

	// ProgressInterval throttles progress callbacks.
	ProgressInterval time.Duration
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxFragmentSize:  MaxFragmentSize,
		ProgressInterval: 100 * time.Millisecond,
	}
}

// Option configures a Session.
type Option func(*Session)

// WithConfig sets the session configuration.
func WithConfig(config *Config) Option {
	return func(s *Session) {
		s.config = config
	}
}

// WithCallbacks sets the session callbacks.
func WithCallbacks(callbacks *Callbacks) Option {
	return func(s *Session) {
		s.callbacks = mergeCallbacks(callbacks)
	}
}

// WithContext sets the session context.
func WithContext(ctx context.Context) Option {
	return func(s *Session) {
		s.ctx = ctx
	}
}

// WithSessionLogger sets a logger for protocol debugging.
func WithSessionLogger(logger Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates a session on a duplex link. The link is any
// line-oriented byte stream: a serial port, an SSH shell, or an in-memory
// pipe in tests.
func NewSession(link io.ReadWriter, opts ...Option) *Session {
	s := &Session{
		link:      link,
		config:    DefaultConfig(),
		callbacks: defaultCallbacks(),
		ctx:       context.Background(),
		logger:    NoopLogger{},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.sender = NewSender(link, &SenderConfig{
		MaxFragmentSize:  s.config.MaxFragmentSize,
		ProgressInterval: s.config.ProgressInterval,
		Callbacks:        s.callbacks,
		Logger:           s.logger,
	})

	s.receiver = NewReceiver(link, &ReceiverConfig{
		Callbacks: s.callbacks,
		Logger:    s.logger,
	})

	return s
}

// SendFile sends one file over the session. Blocking; returns after the
// final fragment and the file-end announcement are on the wire.
func (s *Session) SendFile(ctx context.Context, filename string, data []byte) error {
	if ctx == nil {
		ctx = s.ctx
	}
	return s.sender.SendFile(ctx, filename, data)
}

// Run drives the receive loop until the link closes or the context is
// cancelled. It is safe to call concurrently with SendFile: the receiver
// owns all reads on the link and the sender all writes.
func (s *Session) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = s.ctx
	}
	return s.receiver.Run(ctx)
}

// SetReceiveMode switches the remote gateway into receive mode.
func (s *Session) SetReceiveMode() error {
	return s.sender.SetReceiveMode()
}

// SendStatus emits a free-text status line.
func (s *Session) SendStatus(text string) error {
	return s.sender.SendStatus(text)
}

// InFlight reports the transfer currently being received, if any.
func (s *Session) InFlight() (name string, received, expected int, ok bool) {
	return s.receiver.InFlight()
}
