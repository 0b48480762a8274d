// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"

	"github.com/jfreymuth/vorbis"

	"github.com/Stepan-Kasyanenko/keyfinder-cli/media"
)

// vorbisSession decodes Vorbis packets. The demuxer must deliver the
// three header packets through the stream descriptor's Extradata; data
// packets then decode one at a time, each consumed whole.
type vorbisSession struct {
	dec    vorbis.Decoder
	rate   int
	layout media.ChannelLayout
	frame  media.Frame
}

func newVorbisSession(desc media.StreamDescriptor, log *slog.Logger) (Session, error) {
	if len(desc.Extradata) != 3 {
		return nil, fmt.Errorf("%w: vorbis needs 3 header packets, have %d", ErrCodecOpen, len(desc.Extradata))
	}

	s := &vorbisSession{rate: desc.SampleRate, layout: desc.Layout}
	for i, hdr := range desc.Extradata {
		if err := s.dec.ReadHeader(hdr); err != nil {
			return nil, fmt.Errorf("%w: header packet %d: %v", ErrCodecOpen, i, err)
		}
	}

	log.Debug("vorbis decoder ready",
		"rate", s.dec.SampleRate(),
		"channels", s.dec.Channels(),
	)

	return s, nil
}

func (s *vorbisSession) Decode(data []byte) (int, *media.Frame, error) {
	samples, err := s.dec.Decode(data)
	if err != nil {
		return 0, nil, fmt.Errorf("vorbis: %w", err)
	}

	// The first audio packet only primes the overlap window and
	// yields no samples.
	if len(samples) == 0 {
		return len(data), nil, nil
	}

	need := len(samples) * 4
	if cap(s.frame.Data) < need {
		s.frame.Data = make([]byte, need)
	}
	s.frame.Data = s.frame.Data[:need]

	for i, v := range samples {
		binary.LittleEndian.PutUint32(s.frame.Data[4*i:], math.Float32bits(v))
	}

	s.frame.Format = media.FormatF32
	s.frame.Rate = s.rate
	s.frame.Layout = s.layout

	return len(data), &s.frame, nil
}

func (s *vorbisSession) Close() error { return nil }
