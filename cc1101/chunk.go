package cc1101

import (
	"encoding/base64"
	"fmt"
)

// Fragment is one entry in a send-side chunk plan: a payload slice plus its
// sequence metadata, ready to be framed.
type Fragment struct {
	Type    PacketType
	Seq     int
	Total   int
	Payload []byte
}

// Plan partitions a file into wire-sized fragments.
//
// The raw bytes are first base64-encoded so the fragment stream is
// representable on the line-oriented channel, then the encoded text is
// sliced into consecutive runs of at most maxFragmentSize characters. The
// first fragment is marked START, all others DATA. An empty file produces
// exactly one zero-length START fragment.
//
// Plan is deterministic: identical inputs always yield the identical
// fragment sequence.
func Plan(fileBytes []byte, maxFragmentSize int) ([]Fragment, error) {
	if maxFragmentSize < 1 {
		return nil, NewError(ErrProtocol, fmt.Sprintf("invalid fragment size %d", maxFragmentSize))
	}

	encoded := base64.StdEncoding.EncodeToString(fileBytes)

	total := (len(encoded) + maxFragmentSize - 1) / maxFragmentSize
	if total == 0 {
		total = 1
	}

	fragments := make([]Fragment, 0, total)
	for seq := 1; seq <= total; seq++ {
		start := (seq - 1) * maxFragmentSize
		end := start + maxFragmentSize
		if end > len(encoded) {
			end = len(encoded)
		}

		ptype := PacketData
		if seq == 1 {
			ptype = PacketStart
		}

		fragments = append(fragments, Fragment{
			Type:    ptype,
			Seq:     seq,
			Total:   total,
			Payload: []byte(encoded[start:end]),
		})
	}

	return fragments, nil
}
