package cc1101

import (
	"context"
	"io"
	"sync"
	"time"
)

// Sender handles the send path: chunk plan, framing, and one blocking line
// write per fragment. A Sender drives one transfer at a time.
type Sender struct {
	writer io.Writer

	// Configuration
	maxFragmentSize  int
	progressInterval time.Duration

	callbacks *Callbacks
	logger    Logger

	mu   sync.Mutex
	busy bool
}

// SenderConfig holds configuration for a sender.
type SenderConfig struct {
	MaxFragmentSize  int
	ProgressInterval time.Duration
	Callbacks        *Callbacks
	Logger           Logger
}

// DefaultSenderConfig returns a default sender configuration.
func DefaultSenderConfig() *SenderConfig {
	return &SenderConfig{
		MaxFragmentSize:  MaxFragmentSize,
		ProgressInterval: 100 * time.Millisecond,
	}
}

// NewSender creates a sender writing to the given link.
func NewSender(writer io.Writer, config *SenderConfig) *Sender {
	if config == nil {
		config = DefaultSenderConfig()
	}
	if config.MaxFragmentSize < 1 {
		config.MaxFragmentSize = MaxFragmentSize
	}
	logger := config.Logger
	if logger == nil {
		logger = NoopLogger{}
	}

	return &Sender{
		writer:           writer,
		maxFragmentSize:  config.MaxFragmentSize,
		progressInterval: config.ProgressInterval,
		callbacks:        mergeCallbacks(config.Callbacks),
		logger:           logger,
	}
}

// writeLine emits one complete newline-terminated line on the link.
func (s *Sender) writeLine(line string) error {
	if _, err := io.WriteString(s.writer, line+"\n"); err != nil {
		return WrapError(ErrLink, "write line", err)
	}
	return nil
}

// SendFile transmits one file: a TXMODE switch, the file announcement, one
// framed line per fragment, and the file-end announcement. The loop is
// synchronous and blocking; it completes only after the last line is
// written. Cancellation is checked between fragment writes; an in-flight
// line write itself is never interrupted.
func (s *Sender) SendFile(ctx context.Context, filename string, data []byte) error {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return NewError(ErrProtocol, "send already in progress")
	}
	s.busy = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	if ctx == nil {
		ctx = context.Background()
	}

	fragments, err := Plan(data, s.maxFragmentSize)
	if err != nil {
		return err
	}
	total := len(fragments)

	s.logger.Info("Sender: %q, %d bytes, %d fragments", filename, len(data), total)
	s.callbacks.OnFileStart(filename, int64(len(data)))

	tracker := NewProgressTracker(s.callbacks.OnProgress, s.progressInterval)
	tracker.Start(filename, int64(total))

	if err := s.writeLine(tokenTxMode); err != nil {
		return err
	}
	if err := s.writeLine(FormatFileAnnounce(filename, total, len(data))); err != nil {
		return err
	}

	for i, frag := range fragments {
		select {
		case <-ctx.Done():
			return WrapError(ErrCancelled, "send "+filename, ctx.Err())
		default:
		}

		encoded, err := EncodePacket(&Packet{
			Type:     frag.Type,
			Seq:      frag.Seq,
			Total:    frag.Total,
			Filename: filename,
			Payload:  frag.Payload,
		})
		if err != nil {
			return err
		}

		if err := s.writeLine(FormatData(encoded)); err != nil {
			return err
		}

		s.logger.Debug("Sender: sent fragment %d/%d", i+1, total)
		tracker.Update(int64(i + 1))
	}

	if err := s.writeLine(FormatFileEnd(filename)); err != nil {
		return err
	}

	duration := tracker.Complete()
	s.logger.Info("Sender: completed %q in %v", filename, duration)
	s.callbacks.OnFileComplete(filename, int64(len(data)), duration)

	return nil
}

// SendStatus emits a free-text status line on the link.
func (s *Sender) SendStatus(text string) error {
	return s.writeLine(FormatStatus(text))
}

// SetReceiveMode switches the gateway into receive mode and announces
// readiness.
func (s *Sender) SetReceiveMode() error {
	if err := s.writeLine(tokenRxMode); err != nil {
		return err
	}
	return s.writeLine(tokenRxReady)
}
