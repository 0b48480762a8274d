// SPDX-License-Identifier: EPL-2.0

// Package decode drives a probed source through the codec layer and
// accumulates the stream's samples in canonical form.
package decode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Stepan-Kasyanenko/keyfinder-cli/codec"
	"github.com/Stepan-Kasyanenko/keyfinder-cli/container"
	"github.com/Stepan-Kasyanenko/keyfinder-cli/media"
)

var (
	// ErrNoAudioStream reports a container with no audio stream at
	// all.
	ErrNoAudioStream = errors.New("no audio stream found")

	// ErrTooManyBadPackets reports a stream abandoned because
	// undecodable units kept piling up.
	ErrTooManyBadPackets = errors.New("too many bad packets")
)

// badPacketLimit is how many undecodable units one stream may produce
// before decoding aborts. The counter accumulates across the whole
// stream and is never reset by packets that decode fine.
const badPacketLimit = 100

// Source is the container-side surface the decoder needs.
// *container.Source satisfies it; tests use stubs.
type Source interface {
	Streams() []media.StreamDescriptor
	ReadPacket(pkt *media.Packet) error
}

// SelectAudioStream returns the first stream in demux order whose type
// is audio, regardless of whether its codec is decodable.
func SelectAudioStream(streams []media.StreamDescriptor) (media.StreamDescriptor, error) {
	for _, s := range streams {
		if s.Type == media.TypeAudio {
			return s, nil
		}
	}

	return media.StreamDescriptor{}, ErrNoAudioStream
}

// FillAudioData decodes the first audio stream of src into out: it
// opens the stream's decoder, normalizes every frame to 16-bit and
// appends each sample widened to float. The accumulator's frame rate
// and channel count are set before the first sample lands.
//
// A stream may carry up to 100 undecodable units; unit 101 aborts with
// ErrTooManyBadPackets. Frames already accumulated stay in out when an
// error is returned; the caller decides what partial output means.
func FillAudioData(src Source, codecs *codec.Registry, out *media.AudioData, log *slog.Logger) error {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	desc, err := SelectAudioStream(src.Streams())
	if err != nil {
		return err
	}

	if desc.Layout == media.LayoutNone {
		desc.Layout = media.DefaultLayout(desc.Channels)
		log.Debug("channel layout derived", "channels", desc.Channels, "layout", desc.Layout)
	}

	session, err := codecs.Open(desc, log)
	if err != nil {
		return err
	}
	defer session.Close()

	resampler, err := codec.NewResampler(desc.SampleFormat, desc.SampleRate, desc.Layout)
	if err != nil {
		return err
	}

	out.SetFrameRate(desc.SampleRate)
	out.SetChannels(desc.Channels)

	reader := container.NewPacketReader(src, desc.Index)

	var (
		pkt    *media.Packet
		offset int
		bad    int
	)

	for {
		if pkt == nil || offset >= len(pkt.Data) {
			next, err := reader.Next()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					// A mid-stream read failure ends the stream the
					// same way exhaustion does; what has been
					// decoded so far stands.
					log.Debug("packet read failed, ending stream", "error", err)
				}
				return nil
			}
			pkt, offset = next, 0
		}

		consumed, frame, err := session.Decode(pkt.Data[offset:])
		if err != nil {
			bad++
			if bad > badPacketLimit {
				return fmt.Errorf("%w: gave up after %d", ErrTooManyBadPackets, bad)
			}
			log.Debug("bad packet skipped", "count", bad, "error", err)
			pkt = nil // drop the rest of the unit

			continue
		}

		offset += consumed

		if frame == nil {
			continue
		}

		if frame.Format != media.FormatS16 {
			frame, err = resampler.Convert(frame)
			if err != nil {
				return err
			}
		}

		appendWidened(out, frame.Data)
	}
}

// appendWidened appends every canonical 16-bit sample in data to the
// accumulator, widened to float.
func appendWidened(out *media.AudioData, data []byte) {
	for i := 0; i+1 < len(data); i += 2 {
		out.Append(float32(int16(binary.LittleEndian.Uint16(data[i:]))))
	}
}
