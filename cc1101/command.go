package cc1101

import (
	"fmt"
	"strconv"
	"strings"
)

// LineKind classifies a line received on the link.
type LineKind int

const (
	// LineData is a framed data packet; Payload holds the base64 blob.
	LineData LineKind = iota

	// LineStatus is free-text status from the gateway.
	LineStatus

	// LineFileBegin announces an incoming file with its fragment count and
	// byte length.
	LineFileBegin

	// LineFileEnd announces the end of a file transfer.
	LineFileEnd

	// LineRxMode, LineTxMode and LineRxReady are bare mode tokens.
	LineRxMode
	LineTxMode
	LineRxReady

	// LineUnknown is anything else on the link. The command channel is
	// best-effort, so unknown traffic is not an error.
	LineUnknown
)

func (k LineKind) String() string {
	switch k {
	case LineData:
		return "DATA"
	case LineStatus:
		return "STATUS"
	case LineFileBegin:
		return "FILE"
	case LineFileEnd:
		return "FILE_END"
	case LineRxMode:
		return "RXMODE"
	case LineTxMode:
		return "TXMODE"
	case LineRxReady:
		return "RX_READY"
	default:
		return "UNKNOWN"
	}
}

// Line is one classified line from the link.
type Line struct {
	Kind LineKind

	// Payload is the base64 blob for LineData, or the text for LineStatus.
	Payload string

	// Filename is set for LineFileBegin and LineFileEnd.
	Filename string

	// FragmentCount and ByteLength are set for LineFileBegin.
	FragmentCount int
	ByteLength    int
}

// ClassifyLine parses one raw line from the link into its protocol meaning.
// Control tokens carry no checksum and are matched by prefix and delimiter
// only. Lines that match no known form come back as LineUnknown; only a
// structurally broken file announcement is an error.
func ClassifyLine(raw string) (*Line, error) {
	raw = strings.TrimRight(raw, "\r\n")

	switch raw {
	case tokenRxMode:
		return &Line{Kind: LineRxMode}, nil
	case tokenTxMode:
		return &Line{Kind: LineTxMode}, nil
	case tokenRxReady:
		return &Line{Kind: LineRxReady}, nil
	}

	switch {
	case strings.HasPrefix(raw, prefixData) && strings.HasSuffix(raw, lineSuffix):
		return &Line{
			Kind:    LineData,
			Payload: raw[len(prefixData) : len(raw)-1],
		}, nil

	case strings.HasPrefix(raw, prefixStatus) && strings.HasSuffix(raw, lineSuffix):
		return &Line{
			Kind:    LineStatus,
			Payload: raw[len(prefixStatus) : len(raw)-1],
		}, nil

	case strings.HasPrefix(raw, prefixFileEnd) && strings.HasSuffix(raw, lineSuffix):
		return &Line{
			Kind:     LineFileEnd,
			Filename: raw[len(prefixFileEnd) : len(raw)-1],
		}, nil

	case strings.HasPrefix(raw, prefixFile) && strings.HasSuffix(raw, lineSuffix):
		body := raw[len(prefixFile) : len(raw)-1]
		parts := strings.Split(body, "|")
		if len(parts) != 3 {
			return nil, NewError(ErrMalformed, fmt.Sprintf("file announcement %q", raw))
		}
		count, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, WrapError(ErrMalformed, "file announcement fragment count", err)
		}
		length, err := strconv.Atoi(parts[2])
		if err != nil {
			return nil, WrapError(ErrMalformed, "file announcement byte length", err)
		}
		return &Line{
			Kind:          LineFileBegin,
			Filename:      parts[0],
			FragmentCount: count,
			ByteLength:    length,
		}, nil
	}

	return &Line{Kind: LineUnknown, Payload: raw}, nil
}

// FormatData wraps an encoded packet blob into its wire line.
func FormatData(encoded string) string {
	return prefixData + encoded + lineSuffix
}

// FormatStatus builds a free-text status line.
func FormatStatus(text string) string {
	return prefixStatus + text + lineSuffix
}

// FormatFileAnnounce builds the file-begin announcement.
func FormatFileAnnounce(filename string, fragments, byteLength int) string {
	return fmt.Sprintf("%s%s|%d|%d%s", prefixFile, filename, fragments, byteLength, lineSuffix)
}

// FormatFileEnd builds the file-end announcement.
func FormatFileEnd(filename string) string {
	return prefixFileEnd + filename + lineSuffix
}
