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

// auHeaderSize is the fixed part of a Sun AU header; the data offset
// may reserve more for an annotation field.
const auHeaderSize = 24

// AUFormat describes Sun/NeXT .au (.snd) containers.
func AUFormat() Format {
	return Format{
		Name: "au",
		Sniff: func(head []byte) bool {
			return len(head) >= 4 && bytes.Equal(head[0:4], []byte(".snd"))
		},
		Open: newAUDemuxer,
	}
}

type auDemuxer struct {
	r           io.Reader
	desc        media.StreamDescriptor
	remaining   int64 // -1 when the header declares an unknown length
	packetBytes int
}

func newAUDemuxer(r io.Reader, log *slog.Logger) (Demuxer, error) {
	var hdr [auHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: short AU header", ErrMalformed)
	}
	if !bytes.Equal(hdr[0:4], []byte(".snd")) {
		return nil, fmt.Errorf("%w: not an AU file", ErrMalformed)
	}

	offset := binary.BigEndian.Uint32(hdr[4:8])
	size := binary.BigEndian.Uint32(hdr[8:12])
	encoding := binary.BigEndian.Uint32(hdr[12:16])
	rate := binary.BigEndian.Uint32(hdr[16:20])
	channels := binary.BigEndian.Uint32(hdr[20:24])

	if offset < auHeaderSize {
		return nil, fmt.Errorf("%w: data offset %d inside header", ErrMalformed, offset)
	}
	if channels == 0 || rate == 0 {
		return nil, fmt.Errorf("%w: invalid AU parameters", ErrMalformed)
	}

	if skip := int64(offset) - auHeaderSize; skip > 0 {
		if _, err := io.CopyN(io.Discard, r, skip); err != nil {
			return nil, fmt.Errorf("%w: truncated annotation", ErrMalformed)
		}
	}

	d := &auDemuxer{r: r, remaining: -1}
	if size != 0xFFFFFFFF {
		d.remaining = int64(size)
	}

	d.desc.Type = media.TypeAudio
	d.desc.SampleRate = int(rate)
	d.desc.Channels = int(channels)

	var width int
	d.desc.Codec, d.desc.SampleFormat, width = auCodec(encoding)

	align := d.desc.Channels * width
	d.packetBytes = wavPacketBytes - wavPacketBytes%align
	if d.packetBytes <= 0 {
		d.packetBytes = align
	}

	log.Debug("au stream",
		"codec", d.desc.Codec,
		"rate", d.desc.SampleRate,
		"channels", d.desc.Channels,
		"data_bytes", d.remaining,
	)

	return d, nil
}

// auCodec maps an AU encoding field onto a codec, the decoder output
// format and the stored sample width in bytes.
func auCodec(encoding uint32) (media.Codec, media.SampleFormat, int) {
	switch encoding {
	case 1:
		return media.CodecMuLaw, media.FormatS16, 1
	case 2:
		return media.CodecPCMS8, media.FormatU8, 1
	case 3:
		return media.CodecPCMS16BE, media.FormatS16, 2
	case 4:
		return media.CodecPCMS24BE, media.FormatS32, 3
	case 5:
		return media.CodecPCMS32BE, media.FormatS32, 4
	case 6:
		return media.CodecPCMF32BE, media.FormatF32, 4
	case 7:
		return media.CodecPCMF64BE, media.FormatF64, 8
	case 27:
		return media.CodecALaw, media.FormatS16, 1
	default:
		return media.CodecNone, media.FormatNone, 1
	}
}

func (d *auDemuxer) Streams() []media.StreamDescriptor {
	return []media.StreamDescriptor{d.desc}
}

func (d *auDemuxer) ReadPacket(pkt *media.Packet) error {
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
