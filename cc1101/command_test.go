package cc1101

import "testing"

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Line
	}{
		{
			name: "rx mode token",
			raw:  "<RXMODE>",
			want: Line{Kind: LineRxMode},
		},
		{
			name: "tx mode token",
			raw:  "<TXMODE>",
			want: Line{Kind: LineTxMode},
		},
		{
			name: "rx ready token",
			raw:  "<RX_READY>",
			want: Line{Kind: LineRxReady},
		},
		{
			name: "data line",
			raw:  "<DATA|eyJ0eXBlIjoiU1RBUlQifQ==>",
			want: Line{Kind: LineData, Payload: "eyJ0eXBlIjoiU1RBUlQifQ=="},
		},
		{
			name: "status line",
			raw:  "<STATUS|Gateway ready, 462.1 MHz>",
			want: Line{Kind: LineStatus, Payload: "Gateway ready, 462.1 MHz"},
		},
		{
			name: "file announcement",
			raw:  "<FILE|firmware.bin|12|700>",
			want: Line{Kind: LineFileBegin, Filename: "firmware.bin", FragmentCount: 12, ByteLength: 700},
		},
		{
			name: "file end",
			raw:  "<FILE_END|firmware.bin>",
			want: Line{Kind: LineFileEnd, Filename: "firmware.bin"},
		},
		{
			name: "trailing CRLF stripped",
			raw:  "<STATUS|ok>\r\n",
			want: Line{Kind: LineStatus, Payload: "ok"},
		},
		{
			name: "free-form noise",
			raw:  "boot: cc1101 rev 0x14",
			want: Line{Kind: LineUnknown, Payload: "boot: cc1101 rev 0x14"},
		},
		{
			name: "empty line",
			raw:  "",
			want: Line{Kind: LineUnknown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClassifyLine(tt.raw)
			if err != nil {
				t.Fatalf("ClassifyLine() error = %v", err)
			}
			if *got != tt.want {
				t.Errorf("ClassifyLine() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestClassifyLineMalformedAnnouncements(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "missing fields", raw: "<FILE|only-a-name>"},
		{name: "non-numeric count", raw: "<FILE|f.bin|twelve|700>"},
		{name: "non-numeric length", raw: "<FILE|f.bin|12|lots>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ClassifyLine(tt.raw); !IsMalformed(err) {
				t.Errorf("ClassifyLine(%q) error = %v, want malformed", tt.raw, err)
			}
		})
	}
}

func TestFormatRoundTrips(t *testing.T) {
	line, err := ClassifyLine(FormatFileAnnounce("a b.txt", 3, 120))
	if err != nil {
		t.Fatalf("ClassifyLine() error = %v", err)
	}
	if line.Kind != LineFileBegin || line.Filename != "a b.txt" || line.FragmentCount != 3 || line.ByteLength != 120 {
		t.Errorf("announcement round-trip = %+v", line)
	}

	line, err = ClassifyLine(FormatFileEnd("a b.txt"))
	if err != nil {
		t.Fatalf("ClassifyLine() error = %v", err)
	}
	if line.Kind != LineFileEnd || line.Filename != "a b.txt" {
		t.Errorf("file-end round-trip = %+v", line)
	}

	line, err = ClassifyLine(FormatStatus("sending"))
	if err != nil {
		t.Fatalf("ClassifyLine() error = %v", err)
	}
	if line.Kind != LineStatus || line.Payload != "sending" {
		t.Errorf("status round-trip = %+v", line)
	}

	line, err = ClassifyLine(FormatData("YmxvYg=="))
	if err != nil {
		t.Fatalf("ClassifyLine() error = %v", err)
	}
	if line.Kind != LineData || line.Payload != "YmxvYg==" {
		t.Errorf("data round-trip = %+v", line)
	}
}
