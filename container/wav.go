// SPDX-License-Identifier: EPL-2.0

package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Stepan-Kasyanenko/keyfinder-cli/media"
)

// WAVE format tags that map to known codecs.
const (
	wavTagPCM        = 0x0001
	wavTagFloat      = 0x0003
	wavTagALaw       = 0x0006
	wavTagMuLaw      = 0x0007
	wavTagExtensible = 0xFFFE
)

// wavPacketBytes is the target packet size before block alignment.
const wavPacketBytes = 4096

// wavChannelMasks translates the WAVE dwChannelMask bits into speaker
// positions. Bits without a counterpart (front side pairs, height
// channels) have no entry.
var wavChannelMasks = []struct {
	mask    uint32
	speaker media.ChannelLayout
}{
	{0x0001, media.SpeakerFrontLeft},
	{0x0002, media.SpeakerFrontRight},
	{0x0004, media.SpeakerFrontCenter},
	{0x0008, media.SpeakerLowFrequency},
	{0x0010, media.SpeakerBackLeft},
	{0x0020, media.SpeakerBackRight},
	{0x0100, media.SpeakerBackCenter},
	{0x0200, media.SpeakerSideLeft},
	{0x0400, media.SpeakerSideRight},
}

// WAVFormat describes RIFF/WAVE containers.
func WAVFormat() Format {
	return Format{
		Name: "wav",
		Sniff: func(head []byte) bool {
			return len(head) >= 12 &&
				bytes.Equal(head[0:4], []byte("RIFF")) &&
				bytes.Equal(head[8:12], []byte("WAVE"))
		},
		Open: newWAVDemuxer,
	}
}

type wavDemuxer struct {
	r           io.Reader
	desc        media.StreamDescriptor
	remaining   int64 // -1 when the data chunk length is unknown
	packetBytes int
}

func newWAVDemuxer(r io.Reader, log *slog.Logger) (Demuxer, error) {
	var riff [12]byte
	if _, err := io.ReadFull(r, riff[:]); err != nil {
		return nil, fmt.Errorf("%w: short RIFF header", ErrMalformed)
	}
	if !bytes.Equal(riff[0:4], []byte("RIFF")) || !bytes.Equal(riff[8:12], []byte("WAVE")) {
		return nil, fmt.Errorf("%w: not a RIFF/WAVE file", ErrMalformed)
	}

	d := &wavDemuxer{r: r, remaining: -1}

	var (
		haveFmt    bool
		tag        uint16
		bits       int
		blockAlign int
	)

chunks:
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, fmt.Errorf("%w: missing data chunk", ErrMalformed)
		}

		id := string(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])

		switch id {
		case "fmt ":
			if size < 16 || size > 1<<16 {
				return nil, fmt.Errorf("%w: fmt chunk size %d", ErrMalformed, size)
			}

			chunk := make([]byte, size)
			if _, err := io.ReadFull(r, chunk); err != nil {
				return nil, fmt.Errorf("%w: truncated fmt chunk", ErrMalformed)
			}

			tag = binary.LittleEndian.Uint16(chunk[0:2])
			d.desc.Channels = int(binary.LittleEndian.Uint16(chunk[2:4]))
			d.desc.SampleRate = int(binary.LittleEndian.Uint32(chunk[4:8]))
			blockAlign = int(binary.LittleEndian.Uint16(chunk[12:14]))
			bits = int(binary.LittleEndian.Uint16(chunk[14:16]))

			if tag == wavTagExtensible && size >= 40 {
				mask := binary.LittleEndian.Uint32(chunk[20:24])
				d.desc.Layout = wavLayout(mask, d.desc.Channels)
				// The real tag hides in the first two bytes of the
				// SubFormat GUID.
				tag = binary.LittleEndian.Uint16(chunk[24:26])
			}

			haveFmt = true
		case "data":
			if !haveFmt {
				return nil, fmt.Errorf("%w: data chunk before fmt", ErrMalformed)
			}
			if size != 0xFFFFFFFF && size != 0 {
				d.remaining = int64(size)
			}
			break chunks
		default:
			skip := int64(size)
			if size%2 == 1 {
				skip++ // chunks are word aligned
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return nil, fmt.Errorf("%w: truncated %q chunk", ErrMalformed, id)
			}
		}
	}

	if d.desc.Channels <= 0 || d.desc.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: invalid fmt parameters", ErrMalformed)
	}

	d.desc.Type = media.TypeAudio
	d.desc.Codec, d.desc.SampleFormat = wavCodec(tag, bits)

	if blockAlign <= 0 {
		blockAlign = d.desc.Channels * max(bits/8, 1)
	}
	d.packetBytes = wavPacketBytes - wavPacketBytes%blockAlign
	if d.packetBytes <= 0 {
		d.packetBytes = blockAlign
	}

	log.Debug("wav stream",
		"codec", d.desc.Codec,
		"rate", d.desc.SampleRate,
		"channels", d.desc.Channels,
		"data_bytes", d.remaining,
	)

	return d, nil
}

// wavCodec maps a WAVE format tag and bit depth onto a codec and its
// decoder output format. Unknown combinations yield CodecNone, which
// the codec layer rejects as unsupported.
func wavCodec(tag uint16, bits int) (media.Codec, media.SampleFormat) {
	switch tag {
	case wavTagPCM:
		switch bits {
		case 8:
			return media.CodecPCMU8, media.FormatU8
		case 16:
			return media.CodecPCMS16LE, media.FormatS16
		case 24:
			return media.CodecPCMS24LE, media.FormatS32
		case 32:
			return media.CodecPCMS32LE, media.FormatS32
		}
	case wavTagFloat:
		switch bits {
		case 32:
			return media.CodecPCMF32LE, media.FormatF32
		case 64:
			return media.CodecPCMF64LE, media.FormatF64
		}
	case wavTagALaw:
		return media.CodecALaw, media.FormatS16
	case wavTagMuLaw:
		return media.CodecMuLaw, media.FormatS16
	}

	return media.CodecNone, media.FormatNone
}

// wavLayout translates a WAVE channel mask. Masks that use positions
// this package does not model, or that disagree with the channel
// count, collapse to LayoutNone so the layout gets derived instead.
func wavLayout(mask uint32, channels int) media.ChannelLayout {
	var (
		layout media.ChannelLayout
		seen   uint32
	)

	for _, m := range wavChannelMasks {
		if mask&m.mask != 0 {
			layout |= m.speaker
			seen |= m.mask
		}
	}

	if seen != mask || layout.Channels() != channels {
		return media.LayoutNone
	}

	return layout
}

func (d *wavDemuxer) Streams() []media.StreamDescriptor {
	return []media.StreamDescriptor{d.desc}
}

func (d *wavDemuxer) ReadPacket(pkt *media.Packet) error {
	if d.remaining == 0 {
		return io.EOF
	}

	want := d.packetBytes
	if d.remaining > 0 && d.remaining < int64(want) {
		want = int(d.remaining)
	}

	buf := growPacket(pkt, want)
	n, err := io.ReadFull(d.r, buf)
	if n == 0 {
		if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return io.EOF
		}
		return err
	}

	pkt.Data = buf[:n]
	pkt.StreamIndex = 0
	if d.remaining > 0 {
		d.remaining -= int64(n)
	}

	return nil
}
