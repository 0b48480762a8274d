// SPDX-License-Identifier: EPL-2.0

package container

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/Stepan-Kasyanenko/keyfinder-cli/media"
)

func TestMP3Sniff(t *testing.T) {
	t.Parallel()

	sniff := MP3Format().Sniff

	tests := []struct {
		name string
		head []byte
		want bool
	}{
		{name: "id3 tag", head: []byte("ID3\x04\x00\x00\x00\x00\x00\x00"), want: true},
		{name: "frame sync", head: []byte{0xFF, 0xFB, 0x90, 0x00}, want: true},
		{name: "frame sync high bits only", head: []byte{0xFF, 0xE0, 0x00}, want: true},
		{name: "sync bits missing", head: []byte{0xFF, 0x1B, 0x90}, want: false},
		{name: "riff header", head: []byte("RIFF\x00\x00\x00\x00WAVE"), want: false},
		{name: "too short", head: []byte{0xFF}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := sniff(tt.head); got != tt.want {
				t.Errorf("Sniff(%v) = %v, want %v", tt.head, got, tt.want)
			}
		})
	}
}

func TestMP3Open_Garbage(t *testing.T) {
	t.Parallel()

	// Sniffs as an MP3 frame sync but carries no decodable frame.
	garbage := append([]byte{0xFF, 0xFB, 0x90, 0x00}, make([]byte, 16)...)

	_, err := MP3Format().Open(bytes.NewReader(garbage), testLogger())
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("Open() error = %v, want ErrMalformed", err)
	}
}

// stubMP3Reader scripts the decoded byte stream a real decoder would
// produce.
type stubMP3Reader struct {
	reads []stubRead
	rate  int
	pos   int
}

type stubRead struct {
	data []byte
	err  error
}

func (s *stubMP3Reader) Read(p []byte) (int, error) {
	if s.pos >= len(s.reads) {
		return 0, io.EOF
	}

	r := s.reads[s.pos]
	s.pos++

	return copy(p, r.data), r.err
}

func (s *stubMP3Reader) SampleRate() int { return s.rate }

func TestMP3Demux_Packets(t *testing.T) {
	t.Parallel()

	d := &mp3Demuxer{
		dec: &stubMP3Reader{
			rate: 44100,
			reads: []stubRead{
				{data: []byte{1, 2, 3, 4}},
				{data: nil}, // decoders may return empty reads mid-stream
				{data: []byte{5, 6}},
			},
		},
	}
	d.desc = media.StreamDescriptor{
		Type:         media.TypeAudio,
		Codec:        media.CodecPCMS16LE,
		SampleFormat: media.FormatS16,
		SampleRate:   d.dec.SampleRate(),
		Channels:     2,
	}

	streams := d.Streams()
	if len(streams) != 1 {
		t.Fatalf("Streams() returned %d streams, want 1", len(streams))
	}
	if streams[0].Codec != media.CodecPCMS16LE {
		t.Errorf("Codec = %q, want %q", streams[0].Codec, media.CodecPCMS16LE)
	}
	if streams[0].SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", streams[0].SampleRate)
	}

	var pkt media.Packet

	if err := d.ReadPacket(&pkt); err != nil {
		t.Fatalf("ReadPacket() error = %v, want nil", err)
	}
	if !bytes.Equal(pkt.Data, []byte{1, 2, 3, 4}) {
		t.Errorf("packet = %v, want [1 2 3 4]", pkt.Data)
	}

	// The empty read must be retried, not surfaced as a packet.
	if err := d.ReadPacket(&pkt); err != nil {
		t.Fatalf("ReadPacket() error = %v, want nil", err)
	}
	if !bytes.Equal(pkt.Data, []byte{5, 6}) {
		t.Errorf("packet = %v, want [5 6]", pkt.Data)
	}

	if err := d.ReadPacket(&pkt); !errors.Is(err, io.EOF) {
		t.Fatalf("ReadPacket() error = %v, want io.EOF", err)
	}
}
