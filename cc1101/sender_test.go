package cc1101

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestSendFileWireSequence(t *testing.T) {
	var wire bytes.Buffer
	s := NewSender(&wire, nil)

	data := bytes.Repeat([]byte("abcdefgh"), 30) // 240 bytes -> 320 b64 chars -> 5 fragments
	if err := s.SendFile(context.Background(), "blob.bin", data); err != nil {
		t.Fatalf("SendFile() error = %v", err)
	}

	var lines []string
	scanner := bufio.NewScanner(&wire)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if len(lines) != 8 {
		t.Fatalf("got %d lines, want 8: %q", len(lines), lines)
	}
	if lines[0] != "<TXMODE>" {
		t.Errorf("line 0 = %q, want <TXMODE>", lines[0])
	}
	if lines[1] != "<FILE|blob.bin|5|240>" {
		t.Errorf("line 1 = %q, want <FILE|blob.bin|5|240>", lines[1])
	}
	if lines[7] != "<FILE_END|blob.bin>" {
		t.Errorf("line 7 = %q, want <FILE_END|blob.bin>", lines[7])
	}

	for i, raw := range lines[2:7] {
		line, err := ClassifyLine(raw)
		if err != nil {
			t.Fatalf("ClassifyLine(%d) error = %v", i, err)
		}
		if line.Kind != LineData {
			t.Fatalf("line %d kind = %s, want DATA", i+2, line.Kind)
		}

		p, err := DecodePacket(line.Payload)
		if err != nil {
			t.Fatalf("DecodePacket(%d) error = %v", i, err)
		}
		if p.Seq != i+1 || p.Total != 5 {
			t.Errorf("fragment %d: seq=%d total=%d", i, p.Seq, p.Total)
		}
		if p.Filename != "blob.bin" {
			t.Errorf("fragment %d: filename = %q", i, p.Filename)
		}
		if len(p.Payload) > MaxFragmentSize {
			t.Errorf("fragment %d: %d characters over the ceiling", i, len(p.Payload))
		}
		if p.Checksum != IntegrityTag(p.Payload) {
			t.Errorf("fragment %d: checksum does not match payload", i)
		}

		wantType := PacketData
		if i == 0 {
			wantType = PacketStart
		}
		if p.Type != wantType {
			t.Errorf("fragment %d: type = %s, want %s",
				i, PacketTypeName(p.Type), PacketTypeName(wantType))
		}
	}
}

func TestSendFileCancelled(t *testing.T) {
	var wire bytes.Buffer
	s := NewSender(&wire, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.SendFile(ctx, "never.bin", []byte("data"))
	if !IsCancelled(err) {
		t.Fatalf("SendFile() error = %v, want cancelled", err)
	}
}

func TestSendFileLinkError(t *testing.T) {
	s := NewSender(failingWriter{}, nil)

	err := s.SendFile(context.Background(), "f.bin", []byte("data"))
	if !IsLink(err) {
		t.Fatalf("SendFile() error = %v, want link error", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errLinkDown
}

var errLinkDown = NewError(ErrLink, "link down")

func TestSetReceiveMode(t *testing.T) {
	var wire bytes.Buffer
	s := NewSender(&wire, nil)

	if err := s.SetReceiveMode(); err != nil {
		t.Fatalf("SetReceiveMode() error = %v", err)
	}
	if got := wire.String(); got != "<RXMODE>\n<RX_READY>\n" {
		t.Errorf("wire = %q", got)
	}
}

func TestSendStatus(t *testing.T) {
	var wire bytes.Buffer
	s := NewSender(&wire, nil)

	if err := s.SendStatus("on air"); err != nil {
		t.Fatalf("SendStatus() error = %v", err)
	}
	if got := strings.TrimSuffix(wire.String(), "\n"); got != "<STATUS|on air>" {
		t.Errorf("wire = %q", got)
	}
}
