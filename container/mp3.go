// SPDX-License-Identifier: EPL-2.0

package container

import (
	"fmt"
	"io"
	"log/slog"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/Stepan-Kasyanenko/keyfinder-cli/media"
)

// mp3Reader is an interface for gomp3.Decoder to allow testing.
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

// MP3Format describes MPEG audio elementary streams. Its magic is weak
// (an ID3 tag or a frame sync pattern), so it must be the last format
// registered.
//
// go-mp3 hides frame boundaries behind an io.Reader, so the demuxer
// decodes at the container boundary and emits ready pcm_s16le packets;
// the codec layer then passes them through untouched.
func MP3Format() Format {
	return Format{
		Name: "mp3",
		Sniff: func(head []byte) bool {
			if len(head) < 3 {
				return false
			}
			if head[0] == 'I' && head[1] == 'D' && head[2] == '3' {
				return true
			}
			return head[0] == 0xFF && head[1]&0xE0 == 0xE0
		},
		Open: newMP3Demuxer,
	}
}

type mp3Demuxer struct {
	dec  mp3Reader
	desc media.StreamDescriptor
}

func newMP3Demuxer(r io.Reader, log *slog.Logger) (Demuxer, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	d := &mp3Demuxer{dec: dec}
	d.desc = media.StreamDescriptor{
		Type: media.TypeAudio,
		// go-mp3 always emits 16-bit little-endian stereo.
		Codec:        media.CodecPCMS16LE,
		SampleFormat: media.FormatS16,
		SampleRate:   dec.SampleRate(),
		Channels:     2,
	}

	log.Debug("mp3 stream", "rate", d.desc.SampleRate, "channels", d.desc.Channels)

	return d, nil
}

func (d *mp3Demuxer) Streams() []media.StreamDescriptor {
	return []media.StreamDescriptor{d.desc}
}

func (d *mp3Demuxer) ReadPacket(pkt *media.Packet) error {
	buf := growPacket(pkt, wavPacketBytes)

	for {
		n, err := d.dec.Read(buf)
		if n > 0 {
			pkt.Data = buf[:n]
			pkt.StreamIndex = 0
			return nil
		}
		if err != nil {
			return err
		}
	}
}
