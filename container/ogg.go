// SPDX-License-Identifier: EPL-2.0

package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/Stepan-Kasyanenko/keyfinder-cli/media"
)

// Ogg page header flags.
const (
	oggFlagContinued = 0x01
	oggFlagBOS       = 0x02
)

// oggMaxProbePages bounds how many pages Probe reads while collecting
// stream headers before declaring the file corrupt.
const oggMaxProbePages = 256

// OggFormat describes Ogg containers. Logical streams are identified by
// the magic of their first packet; Vorbis is the only one with a
// registered decoder, Opus and Theora are recognized so stream
// selection can classify them.
func OggFormat() Format {
	return Format{
		Name: "ogg",
		Sniff: func(head []byte) bool {
			return len(head) >= 4 && bytes.Equal(head[0:4], []byte("OggS"))
		},
		Open: newOggDemuxer,
	}
}

type oggPage struct {
	flags   byte
	serial  uint32
	lacing  []byte
	payload []byte
}

type oggStream struct {
	serial     uint32
	desc       media.StreamDescriptor
	partial    []byte
	identified bool

	// headersLeft counts codec header packets still to capture into
	// Extradata after the identification packet.
	headersLeft int
}

type oggPacket struct {
	stream int
	data   []byte
}

type oggDemuxer struct {
	r        io.Reader
	log      *slog.Logger
	streams  []*oggStream
	bySerial map[uint32]*oggStream

	// pending holds data packets completed during header probing, in
	// demux order, so ReadPacket replays them first.
	pending []oggPacket
}

func newOggDemuxer(r io.Reader, log *slog.Logger) (Demuxer, error) {
	d := &oggDemuxer{r: r, log: log, bySerial: make(map[uint32]*oggStream)}

	for pages := 0; d.headersPending(); pages++ {
		if pages >= oggMaxProbePages {
			return nil, fmt.Errorf("%w: stream headers not found in %d pages", ErrMalformed, oggMaxProbePages)
		}

		page, err := d.readPage()
		switch {
		case errors.Is(err, io.EOF):
			if len(d.streams) == 0 {
				return nil, fmt.Errorf("%w: no logical streams", ErrMalformed)
			}
			if d.headersPending() {
				return nil, fmt.Errorf("%w: truncated stream headers", ErrMalformed)
			}
			return d, nil
		case errors.Is(err, io.ErrUnexpectedEOF):
			return nil, fmt.Errorf("%w: truncated page", ErrMalformed)
		case err != nil:
			return nil, err
		}

		if err := d.routePage(page); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func (d *oggDemuxer) headersPending() bool {
	if len(d.streams) == 0 {
		return true
	}

	for _, st := range d.streams {
		if !st.identified || st.headersLeft > 0 {
			return true
		}
	}

	return false
}

func (d *oggDemuxer) readPage() (*oggPage, error) {
	var hdr [27]byte
	if _, err := io.ReadFull(d.r, hdr[:]); err != nil {
		return nil, err
	}

	if !bytes.Equal(hdr[0:4], []byte("OggS")) {
		return nil, fmt.Errorf("%w: bad page capture pattern", ErrMalformed)
	}
	if hdr[4] != 0 {
		return nil, fmt.Errorf("%w: page version %d", ErrMalformed, hdr[4])
	}

	page := &oggPage{
		flags:  hdr[5],
		serial: binary.LittleEndian.Uint32(hdr[14:18]),
		lacing: make([]byte, int(hdr[26])),
	}

	if _, err := io.ReadFull(d.r, page.lacing); err != nil {
		return nil, io.ErrUnexpectedEOF
	}

	total := 0
	for _, lace := range page.lacing {
		total += int(lace)
	}

	page.payload = make([]byte, total)
	if _, err := io.ReadFull(d.r, page.payload); err != nil {
		return nil, io.ErrUnexpectedEOF
	}

	return page, nil
}

// routePage assembles the page's segments into packets on the owning
// stream, completing one packet per lacing value below 255.
func (d *oggDemuxer) routePage(page *oggPage) error {
	st := d.bySerial[page.serial]
	if st == nil {
		if page.flags&oggFlagBOS == 0 {
			if len(d.streams) == 0 {
				return fmt.Errorf("%w: first page is not a stream start", ErrMalformed)
			}
			d.log.Debug("ogg: page for unknown serial dropped", "serial", page.serial)
			return nil
		}

		st = &oggStream{serial: page.serial}
		st.desc.Index = len(d.streams)
		st.desc.Type = media.TypeData
		d.streams = append(d.streams, st)
		d.bySerial[page.serial] = st
	}

	if page.flags&oggFlagContinued == 0 && len(st.partial) > 0 {
		d.log.Debug("ogg: dropping unterminated packet", "serial", st.serial, "bytes", len(st.partial))
		st.partial = st.partial[:0]
	}

	off := 0
	for _, lace := range page.lacing {
		st.partial = append(st.partial, page.payload[off:off+int(lace)]...)
		off += int(lace)

		if lace == 255 {
			continue
		}

		if err := d.finishPacket(st, st.partial); err != nil {
			return err
		}
		st.partial = st.partial[:0]
	}

	return nil
}

func (d *oggDemuxer) finishPacket(st *oggStream, data []byte) error {
	switch {
	case !st.identified:
		st.identified = true
		isHeader, err := identifyOggStream(st, data)
		if err != nil {
			return err
		}
		if isHeader {
			d.log.Debug("ogg stream identified",
				"index", st.desc.Index,
				"codec", st.desc.Codec,
				"rate", st.desc.SampleRate,
				"channels", st.desc.Channels,
			)
			return nil
		}
	case st.headersLeft > 0:
		st.headersLeft--
		st.desc.Extradata = append(st.desc.Extradata, slices.Clone(data))
		return nil
	}

	d.pending = append(d.pending, oggPacket{stream: st.desc.Index, data: slices.Clone(data)})

	return nil
}

// identifyOggStream classifies a logical stream from its first packet.
// It reports whether that packet was consumed as a codec header;
// streams with unrecognized magic stay TypeData and keep the packet as
// ordinary data.
func identifyOggStream(st *oggStream, data []byte) (bool, error) {
	switch {
	case len(data) >= 30 && data[0] == 0x01 && bytes.Equal(data[1:7], []byte("vorbis")):
		st.desc.Type = media.TypeAudio
		st.desc.Codec = media.CodecVorbis
		st.desc.SampleFormat = media.FormatF32
		st.desc.Channels = int(data[11])
		st.desc.SampleRate = int(binary.LittleEndian.Uint32(data[12:16]))
		if st.desc.Channels == 0 || st.desc.SampleRate == 0 {
			return false, fmt.Errorf("%w: vorbis identification header", ErrMalformed)
		}
		st.desc.Extradata = [][]byte{slices.Clone(data)}
		st.headersLeft = 2

	case len(data) >= 19 && bytes.Equal(data[0:8], []byte("OpusHead")):
		st.desc.Type = media.TypeAudio
		st.desc.Codec = media.CodecOpus
		st.desc.SampleFormat = media.FormatS16
		st.desc.Channels = int(data[9])
		st.desc.SampleRate = 48000 // Opus always decodes at 48 kHz
		st.desc.Extradata = [][]byte{slices.Clone(data)}
		st.headersLeft = 1

	case len(data) >= 7 && data[0] == 0x80 && bytes.Equal(data[1:7], []byte("theora")):
		st.desc.Type = media.TypeVideo
		st.desc.Codec = media.CodecTheora
		st.headersLeft = 2

	default:
		return false, nil
	}

	return true, nil
}

func (d *oggDemuxer) Streams() []media.StreamDescriptor {
	descs := make([]media.StreamDescriptor, len(d.streams))
	for i, st := range d.streams {
		descs[i] = st.desc
	}

	return descs
}

func (d *oggDemuxer) ReadPacket(pkt *media.Packet) error {
	for {
		if len(d.pending) > 0 {
			p := d.pending[0]
			d.pending = d.pending[1:]

			buf := growPacket(pkt, len(p.data))
			copy(buf, p.data)
			pkt.StreamIndex = p.stream

			return nil
		}

		page, err := d.readPage()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return io.EOF
		}
		if err != nil {
			return err
		}

		if err := d.routePage(page); err != nil {
			return err
		}
	}
}
