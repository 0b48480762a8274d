// SPDX-License-Identifier: EPL-2.0

package container

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Stepan-Kasyanenko/keyfinder-cli/internal/mediatest"
	"github.com/Stepan-Kasyanenko/keyfinder-cli/media"
)

func TestAUDemux_Encodings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		encoding   uint32
		payload    []byte
		wantCodec  media.Codec
		wantFormat media.SampleFormat
	}{
		{name: "mulaw", encoding: 1, payload: []byte{0xFF, 0x7F, 0x00, 0x80}, wantCodec: media.CodecMuLaw, wantFormat: media.FormatS16},
		{name: "signed 8 bit", encoding: 2, payload: []byte{0x00, 0x7F, 0x80}, wantCodec: media.CodecPCMS8, wantFormat: media.FormatU8},
		{name: "signed 16 bit", encoding: 3, payload: mediatest.PCM16BE([]int16{100, -100}), wantCodec: media.CodecPCMS16BE, wantFormat: media.FormatS16},
		{name: "signed 24 bit", encoding: 4, payload: make([]byte, 9), wantCodec: media.CodecPCMS24BE, wantFormat: media.FormatS32},
		{name: "signed 32 bit", encoding: 5, payload: make([]byte, 8), wantCodec: media.CodecPCMS32BE, wantFormat: media.FormatS32},
		{name: "float32", encoding: 6, payload: mediatest.PCMF32BE([]float32{0.5, -0.5}), wantCodec: media.CodecPCMF32BE, wantFormat: media.FormatF32},
		{name: "float64", encoding: 7, payload: make([]byte, 16), wantCodec: media.CodecPCMF64BE, wantFormat: media.FormatF64},
		{name: "alaw", encoding: 27, payload: []byte{0x55, 0xD5}, wantCodec: media.CodecALaw, wantFormat: media.FormatS16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data := mediatest.AU(tt.encoding, 8000, 1, tt.payload)

			d, err := AUFormat().Open(bytes.NewReader(data), testLogger())
			if err != nil {
				t.Fatalf("Open() error = %v, want nil", err)
			}

			desc := d.Streams()[0]
			if desc.Codec != tt.wantCodec {
				t.Errorf("Codec = %q, want %q", desc.Codec, tt.wantCodec)
			}
			if desc.SampleFormat != tt.wantFormat {
				t.Errorf("SampleFormat = %v, want %v", desc.SampleFormat, tt.wantFormat)
			}
			if desc.SampleRate != 8000 {
				t.Errorf("SampleRate = %d, want 8000", desc.SampleRate)
			}

			// The annotation field sits between header and data; a
			// matching payload proves it was skipped.
			payload, _ := drainStream(t, d, 0)
			if !bytes.Equal(payload, tt.payload) {
				t.Errorf("drained %v, want %v", payload, tt.payload)
			}
		})
	}
}

func TestAUDemux_UnknownEncoding(t *testing.T) {
	t.Parallel()

	data := mediatest.AU(99, 8000, 1, []byte{0x00, 0x01})

	d, err := AUFormat().Open(bytes.NewReader(data), testLogger())
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}

	if codec := d.Streams()[0].Codec; codec != media.CodecNone {
		t.Errorf("Codec = %q, want CodecNone", codec)
	}
}

func TestAUDemux_UnknownDataLength(t *testing.T) {
	t.Parallel()

	payload := mediatest.PCM16BE(mediatest.Ramp16(50))
	data := mediatest.AU(3, 8000, 1, payload)

	// Streaming writers leave the size field at all ones.
	copy(data[8:12], []byte{0xFF, 0xFF, 0xFF, 0xFF})

	d, err := AUFormat().Open(bytes.NewReader(data), testLogger())
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}

	drained, _ := drainStream(t, d, 0)
	if !bytes.Equal(drained, payload) {
		t.Errorf("drained %d bytes, want %d", len(drained), len(payload))
	}
}

func TestAUDemux_Malformed(t *testing.T) {
	t.Parallel()

	valid := mediatest.AU(3, 8000, 1, mediatest.PCM16BE([]int16{1, 2}))

	badOffset := bytes.Clone(valid)
	copy(badOffset[4:8], []byte{0x00, 0x00, 0x00, 0x0C}) // offset 12, inside the header

	zeroRate := bytes.Clone(valid)
	copy(zeroRate[16:20], []byte{0x00, 0x00, 0x00, 0x00})

	tests := []struct {
		name string
		data []byte
	}{
		{name: "short header", data: valid[:10]},
		{name: "offset inside header", data: badOffset},
		{name: "zero sample rate", data: zeroRate},
		{name: "wrong magic", data: []byte("soundfile data here")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := AUFormat().Open(bytes.NewReader(tt.data), testLogger())
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("Open() error = %v, want ErrMalformed", err)
			}
		})
	}
}
