// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/Stepan-Kasyanenko/keyfinder-cli/media"
)

// pcmMaxSamples caps how many samples one Decode call emits. Larger
// inputs are consumed across several calls, the remainder reported as
// unconsumed.
const pcmMaxSamples = 2048

// pcmConv re-packs src into dst. dst is sized for exactly
// len(src)/inWidth samples of the output format.
type pcmConv func(dst, src []byte)

// pcmSession handles the uncompressed codec family: every input sample
// maps to one output sample, re-packed into the decoder's output
// format with multi-byte values little-endian.
type pcmSession struct {
	inWidth int
	format  media.SampleFormat
	rate    int
	layout  media.ChannelLayout
	conv    pcmConv
	frame   media.Frame
}

func newPCMFactory(inWidth int, format media.SampleFormat, conv pcmConv) Factory {
	return func(desc media.StreamDescriptor, log *slog.Logger) (Session, error) {
		if desc.SampleRate <= 0 || desc.Channels <= 0 {
			return nil, fmt.Errorf("%w: stream has no rate or channels", ErrCodecOpen)
		}

		return &pcmSession{
			inWidth: inWidth,
			format:  format,
			rate:    desc.SampleRate,
			layout:  desc.Layout,
			conv:    conv,
		}, nil
	}
}

func (s *pcmSession) Decode(data []byte) (int, *media.Frame, error) {
	usable := len(data) - len(data)%s.inWidth
	if usable == 0 {
		// Trailing bytes shorter than one sample carry nothing.
		return len(data), nil, nil
	}
	if limit := pcmMaxSamples * s.inWidth; usable > limit {
		usable = limit
	}

	samples := usable / s.inWidth
	need := samples * s.format.BytesPerSample()
	if cap(s.frame.Data) < need {
		s.frame.Data = make([]byte, need)
	}
	s.frame.Data = s.frame.Data[:need]
	s.conv(s.frame.Data, data[:usable])

	s.frame.Format = s.format
	s.frame.Rate = s.rate
	s.frame.Layout = s.layout

	return usable, &s.frame, nil
}

func (s *pcmSession) Close() error { return nil }

// registerPCM wires the whole uncompressed family into the registry.
// Output formats follow decoder convention: 24-bit widens into the
// high bytes of 32-bit, signed 8-bit shifts to offset binary.
func registerPCM(r *Registry) {
	for _, c := range []struct {
		codec   media.Codec
		inWidth int
		format  media.SampleFormat
		conv    pcmConv
	}{
		{media.CodecPCMU8, 1, media.FormatU8, convCopy},
		{media.CodecPCMS8, 1, media.FormatU8, convS8},
		{media.CodecPCMS16LE, 2, media.FormatS16, convCopy},
		{media.CodecPCMS16BE, 2, media.FormatS16, convSwap2},
		{media.CodecPCMS24LE, 3, media.FormatS32, convS24LE},
		{media.CodecPCMS24BE, 3, media.FormatS32, convS24BE},
		{media.CodecPCMS32LE, 4, media.FormatS32, convCopy},
		{media.CodecPCMS32BE, 4, media.FormatS32, convSwap4},
		{media.CodecPCMF32LE, 4, media.FormatF32, convCopy},
		{media.CodecPCMF32BE, 4, media.FormatF32, convSwap4},
		{media.CodecPCMF64LE, 8, media.FormatF64, convCopy},
		{media.CodecPCMF64BE, 8, media.FormatF64, convSwap8},
	} {
		r.Register(c.codec, newPCMFactory(c.inWidth, c.format, c.conv))
	}
}

func convCopy(dst, src []byte) {
	copy(dst, src)
}

// convS8 shifts signed 8-bit to offset binary.
func convS8(dst, src []byte) {
	for i, b := range src {
		dst[i] = b ^ 0x80
	}
}

func convSwap2(dst, src []byte) {
	for i := 0; i+1 < len(src); i += 2 {
		dst[i] = src[i+1]
		dst[i+1] = src[i]
	}
}

func convSwap4(dst, src []byte) {
	for i := 0; i+3 < len(src); i += 4 {
		dst[i] = src[i+3]
		dst[i+1] = src[i+2]
		dst[i+2] = src[i+1]
		dst[i+3] = src[i]
	}
}

func convSwap8(dst, src []byte) {
	for i := 0; i+7 < len(src); i += 8 {
		for j := 0; j < 8; j++ {
			dst[i+j] = src[i+7-j]
		}
	}
}

func convS24LE(dst, src []byte) {
	for i, j := 0, 0; i+2 < len(src); i, j = i+3, j+4 {
		v := uint32(src[i])<<8 | uint32(src[i+1])<<16 | uint32(src[i+2])<<24
		binary.LittleEndian.PutUint32(dst[j:], v)
	}
}

func convS24BE(dst, src []byte) {
	for i, j := 0, 0; i+2 < len(src); i, j = i+3, j+4 {
		v := uint32(src[i])<<24 | uint32(src[i+1])<<16 | uint32(src[i+2])<<8
		binary.LittleEndian.PutUint32(dst[j:], v)
	}
}
