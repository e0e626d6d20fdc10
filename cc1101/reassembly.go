package cc1101

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"sync"
)

// TransferContext is the receive-side accumulation state for one in-flight
// transfer. It is exclusively owned by the Reassembler and replaced
// wholesale whenever a START packet arrives.
type TransferContext struct {
	// Name is the filename learned from the START fragment.
	Name string

	// ExpectedTotal is the fragment count learned from the START fragment.
	ExpectedTotal int

	// Received holds the payloads in arrival order, append-only.
	Received [][]byte
}

// ReceivedFile is a completed transfer: the original bytes recovered from
// the fragment stream.
type ReceivedFile struct {
	Name string
	Data []byte
}

// Reassembler accumulates validated fragments and emits a completed file
// once every expected fragment has arrived. One transfer is in flight at a
// time; a new START always wins, discarding any partial transfer.
//
// Ingest is called only by the receive loop; the mutex lets InFlight be
// polled from other goroutines while the loop runs.
type Reassembler struct {
	mu     sync.Mutex
	ctx    *TransferContext
	logger Logger
}

// NewReassembler creates a reassembler. A nil logger disables logging.
func NewReassembler(logger Logger) *Reassembler {
	if logger == nil {
		logger = NoopLogger{}
	}
	return &Reassembler{logger: logger}
}

// Ingest feeds one decoded packet into the state machine.
//
// The checksum is verified here: on mismatch the packet is dropped with a
// checksum error and the open context is retained, so a single noisy
// fragment does not lose the whole transfer. With no retransmission in the
// protocol, a dropped fragment means the transfer can never reach its
// expected total and will stall until a new START arrives.
//
// The returned file is non-nil exactly when this packet completed a
// transfer.
func (r *Reassembler) Ingest(p *Packet) (*ReceivedFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.Checksum != IntegrityTag(p.Payload) {
		return nil, NewError(ErrChecksum, fmt.Sprintf("fragment %d/%d of %q", p.Seq, p.Total, p.Filename))
	}

	switch p.Type {
	case PacketStart:
		if p.Total < 1 {
			return nil, NewError(ErrMalformed, fmt.Sprintf("START with total %d", p.Total))
		}
		if r.ctx != nil {
			// An interrupted transfer cannot be resumed; the new START wins.
			r.logger.Info("Reassembler: discarding partial transfer %q (%d/%d) for new START %q",
				r.ctx.Name, len(r.ctx.Received), r.ctx.ExpectedTotal, p.Filename)
		}
		r.ctx = &TransferContext{
			Name:          p.Filename,
			ExpectedTotal: p.Total,
		}

	case PacketData, PacketEnd:
		if r.ctx == nil {
			// No START seen yet; nothing to append to.
			r.logger.Info("Reassembler: dropping %s fragment %d/%d with no transfer open",
				PacketTypeName(p.Type), p.Seq, p.Total)
			return nil, nil
		}

	default:
		return nil, NewError(ErrMalformed, fmt.Sprintf("packet type %d", p.Type))
	}

	r.ctx.Received = append(r.ctx.Received, p.Payload)
	r.logger.Debug("Reassembler: %q fragment %d/%d (%d bytes)",
		r.ctx.Name, len(r.ctx.Received), r.ctx.ExpectedTotal, len(p.Payload))

	if len(r.ctx.Received) < r.ctx.ExpectedTotal {
		return nil, nil
	}

	// All fragments arrived: undo the outer text encoding and emit.
	name := r.ctx.Name
	joined := bytes.Join(r.ctx.Received, nil)
	r.ctx = nil

	data, err := base64.StdEncoding.DecodeString(string(joined))
	if err != nil {
		return nil, WrapError(ErrMalformed, fmt.Sprintf("transfer %q payload", name), err)
	}

	return &ReceivedFile{Name: name, Data: data}, nil
}

// InFlight reports the open transfer, if any: its name and fragment
// counters. ok is false when the reassembler is idle.
func (r *Reassembler) InFlight() (name string, received, expected int, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctx == nil {
		return "", 0, 0, false
	}
	return r.ctx.Name, len(r.ctx.Received), r.ctx.ExpectedTotal, true
}

// Reset discards any in-flight transfer. Called when the link closes.
func (r *Reassembler) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctx != nil {
		r.logger.Info("Reassembler: reset, discarding partial transfer %q (%d/%d)",
			r.ctx.Name, len(r.ctx.Received), r.ctx.ExpectedTotal)
	}
	r.ctx = nil
}
