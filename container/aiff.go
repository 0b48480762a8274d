// SPDX-License-Identifier: EPL-2.0

package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/Stepan-Kasyanenko/keyfinder-cli/media"
)

// AIFFFormat describes IFF FORM containers of type AIFF or AIFF-C.
func AIFFFormat() Format {
	return Format{
		Name: "aiff",
		Sniff: func(head []byte) bool {
			return len(head) >= 12 &&
				bytes.Equal(head[0:4], []byte("FORM")) &&
				(bytes.Equal(head[8:12], []byte("AIFF")) || bytes.Equal(head[8:12], []byte("AIFC")))
		},
		Open: newAIFFDemuxer,
	}
}

type aiffDemuxer struct {
	r           io.Reader
	desc        media.StreamDescriptor
	remaining   int64
	packetBytes int
}

func newAIFFDemuxer(r io.Reader, log *slog.Logger) (Demuxer, error) {
	var form [12]byte
	if _, err := io.ReadFull(r, form[:]); err != nil {
		return nil, fmt.Errorf("%w: short FORM header", ErrMalformed)
	}
	if !bytes.Equal(form[0:4], []byte("FORM")) {
		return nil, fmt.Errorf("%w: not an IFF file", ErrMalformed)
	}

	compressed := bytes.Equal(form[8:12], []byte("AIFC"))
	if !compressed && !bytes.Equal(form[8:12], []byte("AIFF")) {
		return nil, fmt.Errorf("%w: FORM type %q", ErrMalformed, form[8:12])
	}

	d := &aiffDemuxer{r: r}

	var (
		haveComm    bool
		bits        int
		compression string
	)

chunks:
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, fmt.Errorf("%w: missing SSND chunk", ErrMalformed)
		}

		id := string(hdr[0:4])
		size := int64(binary.BigEndian.Uint32(hdr[4:8]))

		switch id {
		case "COMM":
			if size < 18 || size > 1<<16 {
				return nil, fmt.Errorf("%w: COMM chunk size %d", ErrMalformed, size)
			}

			chunk := make([]byte, size)
			if _, err := io.ReadFull(r, chunk); err != nil {
				return nil, fmt.Errorf("%w: truncated COMM chunk", ErrMalformed)
			}
			if size%2 == 1 {
				if _, err := io.CopyN(io.Discard, r, 1); err != nil {
					return nil, fmt.Errorf("%w: truncated COMM chunk", ErrMalformed)
				}
			}

			d.desc.Channels = int(binary.BigEndian.Uint16(chunk[0:2]))
			bits = int(binary.BigEndian.Uint16(chunk[6:8]))
			d.desc.SampleRate = int(math.Round(float80(chunk[8:18])))

			compression = "NONE"
			if compressed && size >= 22 {
				compression = string(chunk[18:22])
			}

			haveComm = true
		case "SSND":
			if !haveComm {
				return nil, fmt.Errorf("%w: SSND chunk before COMM", ErrMalformed)
			}
			if size < 8 {
				return nil, fmt.Errorf("%w: SSND chunk size %d", ErrMalformed, size)
			}

			var ssnd [8]byte
			if _, err := io.ReadFull(r, ssnd[:]); err != nil {
				return nil, fmt.Errorf("%w: truncated SSND chunk", ErrMalformed)
			}

			offset := int64(binary.BigEndian.Uint32(ssnd[0:4]))
			if offset > 0 {
				if _, err := io.CopyN(io.Discard, r, offset); err != nil {
					return nil, fmt.Errorf("%w: truncated SSND chunk", ErrMalformed)
				}
			}

			d.remaining = size - 8 - offset
			if d.remaining < 0 {
				return nil, fmt.Errorf("%w: SSND offset past chunk end", ErrMalformed)
			}
			break chunks
		default:
			skip := size
			if size%2 == 1 {
				skip++
			}
			if _, err := io.CopyN(io.Discard, r, skip); err != nil {
				return nil, fmt.Errorf("%w: truncated %q chunk", ErrMalformed, id)
			}
		}
	}

	if d.desc.Channels <= 0 || d.desc.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: invalid COMM parameters", ErrMalformed)
	}

	d.desc.Type = media.TypeAudio
	d.desc.Codec, d.desc.SampleFormat = aiffCodec(compression, bits)

	width := max(bits/8, 1)
	align := d.desc.Channels * width
	d.packetBytes = wavPacketBytes - wavPacketBytes%align
	if d.packetBytes <= 0 {
		d.packetBytes = align
	}

	log.Debug("aiff stream",
		"codec", d.desc.Codec,
		"rate", d.desc.SampleRate,
		"channels", d.desc.Channels,
		"data_bytes", d.remaining,
	)

	return d, nil
}

// aiffCodec maps an AIFF-C compression type (or "NONE" for plain AIFF)
// and sample size onto a codec and its decoder output format.
func aiffCodec(compression string, bits int) (media.Codec, media.SampleFormat) {
	switch compression {
	case "NONE", "twos":
		switch bits {
		case 8:
			return media.CodecPCMS8, media.FormatU8
		case 16:
			return media.CodecPCMS16BE, media.FormatS16
		case 24:
			return media.CodecPCMS24BE, media.FormatS32
		case 32:
			return media.CodecPCMS32BE, media.FormatS32
		}
	case "sowt":
		return media.CodecPCMS16LE, media.FormatS16
	case "fl32", "FL32":
		return media.CodecPCMF32BE, media.FormatF32
	case "fl64", "FL64":
		return media.CodecPCMF64BE, media.FormatF64
	case "ulaw", "ULAW":
		return media.CodecMuLaw, media.FormatS16
	case "alaw", "ALAW":
		return media.CodecALaw, media.FormatS16
	case "raw ":
		return media.CodecPCMU8, media.FormatU8
	}

	return media.CodecNone, media.FormatNone
}

// float80 decodes the 80-bit IEEE 754 extended float AIFF uses for the
// sample rate.
func float80(b []byte) float64 {
	se := binary.BigEndian.Uint16(b[0:2])
	mant := binary.BigEndian.Uint64(b[2:10])

	if se&0x7FFF == 0 && mant == 0 {
		return 0
	}

	sign := 1.0
	if se&0x8000 != 0 {
		sign = -1.0
	}
	exp := int(se&0x7FFF) - 16383 - 63

	return sign * float64(mant) * math.Pow(2, float64(exp))
}

func (d *aiffDemuxer) Streams() []media.StreamDescriptor {
	return []media.StreamDescriptor{d.desc}
}

func (d *aiffDemuxer) ReadPacket(pkt *media.Packet) error {
	if d.remaining <= 0 {
		return io.EOF
	}

	want := d.packetBytes
	if d.remaining < int64(want) {
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
	d.remaining -= int64(n)

	return nil
}
