package cc1101

import (
	"bytes"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Packet is the atomic unit on the wire: one fragment of a transfer plus
// its framing metadata.
type Packet struct {
	// Type tags the fragment (START carries the filename).
	Type PacketType

	// Seq is the 1-based position of this fragment within the transfer.
	Seq int

	// Total is the fragment count for the whole transfer.
	Total int

	// Filename is the logical name of the file. Populated on START, may be
	// empty on later fragments.
	Filename string

	// Checksum is the integrity tag over Payload, two hex characters.
	Checksum string

	// Payload is the fragment body: a slice of the base64 text the whole
	// file was encoded into.
	Payload []byte
}

// packetHeader is the wire form of the framing metadata. The gateway
// firmware parses these exact keys.
type packetHeader struct {
	Type     string `json:"type"`
	Seq      int    `json:"seq"`
	Total    int    `json:"total"`
	Filename string `json:"filename"`
	Checksum string `json:"checksum"`
}

// IntegrityTag computes the integrity tag for a payload: the first two hex
// characters of its MD5 digest.
//
// Two characters give only 256 distinct tags, so collisions are common and
// single-bit corruption can go undetected. The width is fixed by the
// deployed gateway firmware and cannot be widened without breaking it.
func IntegrityTag(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])[:checksumLen]
}

// EncodePacket serializes a packet into its wire text form: the JSON header
// and the raw payload joined by "||", the whole concatenation base64-encoded
// so it survives the line-oriented channel. The checksum field is computed
// here from the payload.
//
// The output never contains a newline and is fully reversible via
// DecodePacket.
func EncodePacket(p *Packet) (string, error) {
	hdr := packetHeader{
		Type:     PacketTypeName(p.Type),
		Seq:      p.Seq,
		Total:    p.Total,
		Filename: p.Filename,
		Checksum: IntegrityTag(p.Payload),
	}
	if hdr.Type == "UNKNOWN" {
		return "", NewError(ErrProtocol, fmt.Sprintf("invalid packet type %d", p.Type))
	}

	hdrBytes, err := json.Marshal(hdr)
	if err != nil {
		return "", WrapError(ErrProtocol, "marshal header", err)
	}

	frame := make([]byte, 0, len(hdrBytes)+len(headerDelimiter)+len(p.Payload))
	frame = append(frame, hdrBytes...)
	frame = append(frame, headerDelimiter...)
	frame = append(frame, p.Payload...)

	return base64.StdEncoding.EncodeToString(frame), nil
}

// DecodePacket reverses EncodePacket. It fails with a malformed-packet error
// when the text is not valid base64, the header delimiter is absent, or the
// header does not parse into valid fields.
//
// DecodePacket does not verify the checksum; that policy belongs to the
// consumer, which must compare Checksum against IntegrityTag(Payload) and
// drop the packet on mismatch.
func DecodePacket(encoded string) (*Packet, error) {
	frame, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, WrapError(ErrMalformed, "invalid base64", err)
	}

	idx := bytes.Index(frame, []byte(headerDelimiter))
	if idx < 0 {
		return nil, NewError(ErrMalformed, "missing header delimiter")
	}
	hdrBytes := frame[:idx]
	payload := frame[idx+len(headerDelimiter):]

	var hdr packetHeader
	if err := json.Unmarshal(hdrBytes, &hdr); err != nil {
		return nil, WrapError(ErrMalformed, "invalid header", err)
	}

	ptype, ok := parsePacketType(hdr.Type)
	if !ok {
		return nil, NewError(ErrMalformed, fmt.Sprintf("unknown packet type %q", hdr.Type))
	}
	if hdr.Seq < 1 {
		return nil, NewError(ErrMalformed, fmt.Sprintf("invalid seq %d", hdr.Seq))
	}
	if hdr.Total < 1 {
		return nil, NewError(ErrMalformed, fmt.Sprintf("invalid total %d", hdr.Total))
	}
	if len(hdr.Checksum) != checksumLen {
		return nil, NewError(ErrMalformed, fmt.Sprintf("invalid checksum %q", hdr.Checksum))
	}

	// Payload may legitimately be empty (empty source file), so no length
	// check here.
	body := make([]byte, len(payload))
	copy(body, payload)

	return &Packet{
		Type:     ptype,
		Seq:      hdr.Seq,
		Total:    hdr.Total,
		Filename: hdr.Filename,
		Checksum: hdr.Checksum,
		Payload:  body,
	}, nil
}
