// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Stepan-Kasyanenko/keyfinder-cli/media"
)

func TestPCMDecode_S16LEPassthrough(t *testing.T) {
	t.Parallel()

	s, err := DefaultRegistry().Open(pcmDesc(media.CodecPCMS16LE), testLogger())
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	defer s.Close()

	in := []byte{0x01, 0x00, 0xFF, 0x7F, 0x00, 0x80}

	consumed, frame, err := s.Decode(in)
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}
	if consumed != len(in) {
		t.Errorf("consumed = %d, want %d", consumed, len(in))
	}
	if frame == nil {
		t.Fatal("Decode() returned nil frame, want samples")
	}

	if frame.Format != media.FormatS16 {
		t.Errorf("Format = %v, want FormatS16", frame.Format)
	}
	if frame.Rate != 44100 {
		t.Errorf("Rate = %d, want 44100", frame.Rate)
	}
	if frame.Layout != media.LayoutStereo {
		t.Errorf("Layout = %v, want LayoutStereo", frame.Layout)
	}
	if !bytes.Equal(frame.Data, in) {
		t.Errorf("Data = %v, want %v", frame.Data, in)
	}
}

func TestPCMDecode_Conversions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		codec      media.Codec
		in         []byte
		want       []byte
		wantFormat media.SampleFormat
	}{
		{
			name:       "u8 copies",
			codec:      media.CodecPCMU8,
			in:         []byte{0x00, 0x80, 0xFF},
			want:       []byte{0x00, 0x80, 0xFF},
			wantFormat: media.FormatU8,
		},
		{
			name:       "s8 shifts to offset binary",
			codec:      media.CodecPCMS8,
			in:         []byte{0x00, 0x80, 0x7F},
			want:       []byte{0x80, 0x00, 0xFF},
			wantFormat: media.FormatU8,
		},
		{
			name:       "s16be swaps",
			codec:      media.CodecPCMS16BE,
			in:         []byte{0x12, 0x34, 0x80, 0x00},
			want:       []byte{0x34, 0x12, 0x00, 0x80},
			wantFormat: media.FormatS16,
		},
		{
			name:       "s24le widens into high bytes",
			codec:      media.CodecPCMS24LE,
			in:         []byte{0x01, 0x02, 0x03},
			want:       []byte{0x00, 0x01, 0x02, 0x03},
			wantFormat: media.FormatS32,
		},
		{
			name:       "s24be widens into high bytes",
			codec:      media.CodecPCMS24BE,
			in:         []byte{0x03, 0x02, 0x01},
			want:       []byte{0x00, 0x01, 0x02, 0x03},
			wantFormat: media.FormatS32,
		},
		{
			name:       "s32be swaps",
			codec:      media.CodecPCMS32BE,
			in:         []byte{0x01, 0x02, 0x03, 0x04},
			want:       []byte{0x04, 0x03, 0x02, 0x01},
			wantFormat: media.FormatS32,
		},
		{
			name:       "f32be swaps",
			codec:      media.CodecPCMF32BE,
			in:         []byte{0x3F, 0x80, 0x00, 0x00}, // 1.0
			want:       []byte{0x00, 0x00, 0x80, 0x3F},
			wantFormat: media.FormatF32,
		},
		{
			name:       "f64be swaps",
			codec:      media.CodecPCMF64BE,
			in:         []byte{0x3F, 0xF0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, // 1.0
			want:       []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0xF0, 0x3F},
			wantFormat: media.FormatF64,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			desc := pcmDesc(tt.codec)
			desc.Channels = 1
			desc.Layout = media.LayoutMono

			s, err := DefaultRegistry().Open(desc, testLogger())
			if err != nil {
				t.Fatalf("Open() error = %v, want nil", err)
			}
			defer s.Close()

			consumed, frame, err := s.Decode(tt.in)
			if err != nil {
				t.Fatalf("Decode() error = %v, want nil", err)
			}
			if consumed != len(tt.in) {
				t.Errorf("consumed = %d, want %d", consumed, len(tt.in))
			}
			if frame == nil {
				t.Fatal("Decode() returned nil frame, want samples")
			}

			if frame.Format != tt.wantFormat {
				t.Errorf("Format = %v, want %v", frame.Format, tt.wantFormat)
			}
			if !bytes.Equal(frame.Data, tt.want) {
				t.Errorf("Data = %v, want %v", frame.Data, tt.want)
			}
		})
	}
}

func TestPCMDecode_PartialConsumption(t *testing.T) {
	t.Parallel()

	s, err := DefaultRegistry().Open(pcmDesc(media.CodecPCMS16LE), testLogger())
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	defer s.Close()

	const extra = 100
	data := make([]byte, 2*(pcmMaxSamples+extra))

	consumed, frame, err := s.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}
	if consumed != 2*pcmMaxSamples {
		t.Errorf("consumed = %d, want %d", consumed, 2*pcmMaxSamples)
	}
	if frame == nil || frame.Samples() != pcmMaxSamples {
		t.Fatalf("frame carries %d samples, want %d", frame.Samples(), pcmMaxSamples)
	}

	consumed, frame, err = s.Decode(data[consumed:])
	if err != nil {
		t.Fatalf("Decode() of remainder error = %v, want nil", err)
	}
	if consumed != 2*extra {
		t.Errorf("consumed = %d, want %d", consumed, 2*extra)
	}
	if frame == nil || frame.Samples() != extra {
		t.Fatalf("frame carries %d samples, want %d", frame.Samples(), extra)
	}
}

func TestPCMDecode_TrailingDregs(t *testing.T) {
	t.Parallel()

	s, err := DefaultRegistry().Open(pcmDesc(media.CodecPCMS16LE), testLogger())
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	defer s.Close()

	// A single byte cannot hold a 16-bit sample; it must be swallowed so
	// the decode loop does not spin on it.
	consumed, frame, err := s.Decode([]byte{0x7F})
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}
	if consumed != 1 {
		t.Errorf("consumed = %d, want 1", consumed)
	}
	if frame != nil {
		t.Errorf("frame = %v, want nil", frame)
	}
}

func TestPCMDecode_ReusesFrame(t *testing.T) {
	t.Parallel()

	s, err := DefaultRegistry().Open(pcmDesc(media.CodecPCMS16LE), testLogger())
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	defer s.Close()

	_, f1, err := s.Decode([]byte{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}

	_, f2, err := s.Decode([]byte{5, 6})
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}

	if f1 != f2 {
		t.Error("Decode() returned distinct frames, want the same reused one")
	}
	if !bytes.Equal(f2.Data, []byte{5, 6}) {
		t.Errorf("Data = %v, want [5 6]", f2.Data)
	}
}

func TestPCMOpen_InvalidStream(t *testing.T) {
	t.Parallel()

	desc := pcmDesc(media.CodecPCMS16LE)
	desc.SampleRate = 0

	_, err := DefaultRegistry().Open(desc, testLogger())
	if !errors.Is(err, ErrCodecOpen) {
		t.Fatalf("Open() error = %v, want ErrCodecOpen", err)
	}
}
