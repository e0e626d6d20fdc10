package cc1101

import (
	"bufio"
	"context"
	"io"
)

// Receiver runs the receive side: a background loop that reads lines off
// the link, classifies them, feeds data packets to the Reassembler, and
// hands completed files to the file sink.
type Receiver struct {
	reader io.Reader

	reassembler *Reassembler
	callbacks   *Callbacks
	logger      Logger
}

// ReceiverConfig holds configuration for a receiver.
type ReceiverConfig struct {
	Callbacks *Callbacks
	Logger    Logger
}

// NewReceiver creates a receiver reading from the given link.
func NewReceiver(reader io.Reader, config *ReceiverConfig) *Receiver {
	if config == nil {
		config = &ReceiverConfig{}
	}
	logger := config.Logger
	if logger == nil {
		logger = NoopLogger{}
	}

	return &Receiver{
		reader:      reader,
		reassembler: NewReassembler(logger),
		callbacks:   mergeCallbacks(config.Callbacks),
		logger:      logger,
	}
}

// lineResult is one read off the link: a complete line or the error that
// ended the stream.
type lineResult struct {
	text string
	err  error
}

// readLines owns all reads on the link. It pushes complete lines into the
// returned channel and closes it after the terminal error. Once done is
// closed the goroutine exits on its next line instead of blocking on a
// consumer that is gone; a read parked inside the scanner still needs the
// link closed to unblock.
func (r *Receiver) readLines(done <-chan struct{}) <-chan lineResult {
	lines := make(chan lineResult)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(r.reader)
		for scanner.Scan() {
			select {
			case lines <- lineResult{text: scanner.Text()}:
			case <-done:
				return
			}
		}
		if err := scanner.Err(); err != nil {
			select {
			case lines <- lineResult{err: err}:
			case <-done:
			}
		}
	}()

	return lines
}

// Run consumes the link until it closes, the context is cancelled, or a
// read fails. Malformed lines and checksum failures are dropped and
// surfaced through OnError; the loop keeps going. Completed files are
// handed to the file sink synchronously, which stalls further receive
// processing until the sink returns.
//
// Run returns nil on a clean close or cancellation, and a link error when
// the read side fails.
func (r *Receiver) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	defer r.reassembler.Reset()

	done := make(chan struct{})
	defer close(done)
	lines := r.readLines(done)

	for {
		select {
		case <-ctx.Done():
			return nil

		case result, ok := <-lines:
			if !ok {
				r.logger.Info("Receiver: link closed")
				return nil
			}
			if result.err != nil {
				err := WrapError(ErrLink, "read line", result.err)
				r.callbacks.OnError(err, "receive loop")
				return err
			}

			r.handleLine(result.text)
		}
	}
}

// handleLine classifies and dispatches one raw line.
func (r *Receiver) handleLine(raw string) {
	line, err := ClassifyLine(raw)
	if err != nil {
		r.logger.Error("Receiver: %v", err)
		r.callbacks.OnError(err, "classify line")
		return
	}

	switch line.Kind {
	case LineData:
		r.handleData(line.Payload)

	case LineStatus:
		r.callbacks.OnStatus(line.Payload)

	case LineFileBegin:
		r.logger.Info("Receiver: incoming file %q (%d fragments, %d bytes)",
			line.Filename, line.FragmentCount, line.ByteLength)
		r.callbacks.OnFileAnnounce(line.Filename, line.FragmentCount, line.ByteLength)

	case LineFileEnd:
		r.callbacks.OnFileEnd(line.Filename)

	case LineRxMode, LineTxMode, LineRxReady:
		r.callbacks.OnMode(line.Kind)

	case LineUnknown:
		r.logger.Debug("Receiver: non-protocol line %q", line.Payload)
		r.callbacks.OnUnknown(line.Payload)
	}
}

// handleData decodes one framed packet and feeds it to the reassembler.
func (r *Receiver) handleData(encoded string) {
	packet, err := DecodePacket(encoded)
	if err != nil {
		r.logger.Error("Receiver: %v", err)
		r.callbacks.OnError(err, "decode packet")
		return
	}

	file, err := r.reassembler.Ingest(packet)
	if err != nil {
		r.logger.Error("Receiver: %v", err)
		r.callbacks.OnError(err, "reassemble")
		return
	}
	if file == nil {
		return
	}

	// May block on user interaction or disk I/O; the transfer context is
	// already consumed, so a failed save cannot be retried.
	path, err := r.callbacks.OnFileSave(file.Name, file.Data)
	if err != nil {
		if IsCancelled(err) {
			r.logger.Info("Receiver: save of %q cancelled", file.Name)
			return
		}
		err = WrapError(ErrSink, "save "+file.Name, err)
		r.logger.Error("Receiver: %v", err)
		r.callbacks.OnError(err, "save file")
		return
	}

	r.logger.Info("Receiver: file saved: %s", path)
	r.callbacks.OnFileComplete(file.Name, int64(len(file.Data)), 0)
}

// InFlight reports the transfer currently being accumulated, if any.
func (r *Receiver) InFlight() (name string, received, expected int, ok bool) {
	return r.reassembler.InFlight()
}
