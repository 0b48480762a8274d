// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"errors"
	"testing"

	"github.com/Stepan-Kasyanenko/keyfinder-cli/internal/mediatest"
	"github.com/Stepan-Kasyanenko/keyfinder-cli/media"
)

func vorbisDesc(extradata [][]byte) media.StreamDescriptor {
	return media.StreamDescriptor{
		Type:         media.TypeAudio,
		Codec:        media.CodecVorbis,
		SampleFormat: media.FormatF32,
		SampleRate:   44100,
		Channels:     2,
		Layout:       media.LayoutStereo,
		Extradata:    extradata,
	}
}

func TestVorbisOpen_MissingHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		extradata [][]byte
	}{
		{name: "no extradata"},
		{name: "one header", extradata: [][]byte{mediatest.VorbisID(2, 44100)}},
		{name: "two headers", extradata: [][]byte{mediatest.VorbisID(2, 44100), mediatest.VorbisComment()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := DefaultRegistry().Open(vorbisDesc(tt.extradata), testLogger())
			if !errors.Is(err, ErrCodecOpen) {
				t.Fatalf("Open() error = %v, want ErrCodecOpen", err)
			}
		})
	}
}

func TestVorbisOpen_BadHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		extradata [][]byte
	}{
		{
			name: "wrong magic in identification",
			extradata: [][]byte{
				[]byte("\x01sorbet\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x01"),
				mediatest.VorbisComment(),
				mediatest.VorbisSetupStub(),
			},
		},
		{
			name: "setup header without codebooks",
			extradata: [][]byte{
				mediatest.VorbisID(2, 44100),
				mediatest.VorbisComment(),
				mediatest.VorbisSetupStub(),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := DefaultRegistry().Open(vorbisDesc(tt.extradata), testLogger())
			if !errors.Is(err, ErrCodecOpen) {
				t.Fatalf("Open() error = %v, want ErrCodecOpen", err)
			}
		})
	}
}
