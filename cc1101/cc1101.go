// Package cc1101 implements the file transfer protocol spoken by CC1101
// radio gateways.
//
// The gateway exposes a low-bandwidth, line-oriented serial console. Files
// are base64-encoded, sliced into small fragments, framed with a JSON header
// and a short checksum, and shipped one ASCII line at a time. Control tokens
// (mode switches, file announcements, status text) travel on the same link
// as plain delimited lines.
//
// The package is designed as a library: it speaks to any duplex byte stream
// (a local serial port, an SSH shell to a remote gateway, or an in-memory
// pipe in tests) and provides callback hooks for saving received files,
// progress tracking, and status display.
package cc1101

// PacketType identifies the role of a data packet within a transfer.
type PacketType int

const (
	// PacketStart marks the first fragment of a transfer and carries the
	// filename.
	PacketStart PacketType = iota

	// PacketData is an intermediate fragment.
	PacketData

	// PacketEnd is accepted for compatibility with gateways that tag their
	// final fragment; it is handled exactly like PacketData.
	PacketEnd
)

// packetTypeNames maps PacketType values to their wire spelling.
var packetTypeNames = []string{
	"START",
	"DATA",
	"END",
}

// PacketTypeName returns the wire spelling of a packet type.
// Returns "UNKNOWN" for invalid values.
func PacketTypeName(t PacketType) string {
	if t < 0 || int(t) >= len(packetTypeNames) {
		return "UNKNOWN"
	}
	return packetTypeNames[int(t)]
}

// parsePacketType maps a wire spelling back to a PacketType.
func parsePacketType(s string) (PacketType, bool) {
	for i, name := range packetTypeNames {
		if s == name {
			return PacketType(i), true
		}
	}
	return 0, false
}

// Protocol constants.
const (
	// MaxFragmentSize is the hard per-fragment ceiling imposed by the radio
	// link: 64 characters of base64 text per payload.
	MaxFragmentSize = 64

	// headerDelimiter separates the serialized header from the payload
	// inside a framed packet. It cannot occur inside the compact JSON
	// header.
	headerDelimiter = "||"

	// checksumLen is the width of the integrity tag in hex characters.
	checksumLen = 2
)

// Wire line prefixes and tokens. Every line on the link is either a framed
// data packet, a status line, or one of the bare control tokens.
const (
	prefixData    = "<DATA|"
	prefixStatus  = "<STATUS|"
	prefixFile    = "<FILE|"
	prefixFileEnd = "<FILE_END|"

	tokenRxMode  = "<RXMODE>"
	tokenTxMode  = "<TXMODE>"
	tokenRxReady = "<RX_READY>"

	lineSuffix = ">"
)
