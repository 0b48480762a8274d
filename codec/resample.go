// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Stepan-Kasyanenko/keyfinder-cli/media"
)

// Resampler normalizes frames of one fixed input format to the
// canonical 16-bit format. It never touches the frame rate or the
// channel layout; both are locked in at construction and every frame
// must match them.
type Resampler struct {
	in     media.SampleFormat
	rate   int
	layout media.ChannelLayout
	out    media.Frame
}

// NewResampler builds a converter from in to the canonical format for
// frames carrying the given rate and layout.
func NewResampler(in media.SampleFormat, rate int, layout media.ChannelLayout) (*Resampler, error) {
	switch in {
	case media.FormatU8, media.FormatS16, media.FormatS32, media.FormatF32, media.FormatF64:
	default:
		return nil, fmt.Errorf("%w: no conversion from %v", ErrResampleOpen, in)
	}

	if rate <= 0 {
		return nil, fmt.Errorf("%w: frame rate %d", ErrResampleOpen, rate)
	}
	if layout == media.LayoutNone {
		return nil, fmt.Errorf("%w: channel layout unknown", ErrResampleOpen)
	}

	return &Resampler{in: in, rate: rate, layout: layout}, nil
}

// Convert returns f normalized to the canonical format. The returned
// frame reuses the resampler's buffer and is only valid until the next
// call.
func (r *Resampler) Convert(f *media.Frame) (*media.Frame, error) {
	if f.Format != r.in || f.Rate != r.rate || f.Layout != r.layout {
		return nil, fmt.Errorf("%w: frame %v/%d/%v does not match session %v/%d/%v",
			ErrResampleConvert, f.Format, f.Rate, f.Layout, r.in, r.rate, r.layout)
	}

	width := r.in.BytesPerSample()
	if len(f.Data)%width != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not whole %v samples", ErrResampleConvert, len(f.Data), r.in)
	}

	samples := len(f.Data) / width
	need := samples * 2
	if cap(r.out.Data) < need {
		r.out.Data = make([]byte, need)
	}
	r.out.Data = r.out.Data[:need]

	switch r.in {
	case media.FormatS16:
		copy(r.out.Data, f.Data)
	case media.FormatU8:
		for i, b := range f.Data {
			v := (int16(b) - 128) << 8
			binary.LittleEndian.PutUint16(r.out.Data[2*i:], uint16(v))
		}
	case media.FormatS32:
		for i := 0; i < samples; i++ {
			v := int32(binary.LittleEndian.Uint32(f.Data[4*i:]))
			binary.LittleEndian.PutUint16(r.out.Data[2*i:], uint16(int16(v>>16)))
		}
	case media.FormatF32:
		for i := 0; i < samples; i++ {
			v := math.Float32frombits(binary.LittleEndian.Uint32(f.Data[4*i:]))
			binary.LittleEndian.PutUint16(r.out.Data[2*i:], uint16(clampS16(float64(v))))
		}
	case media.FormatF64:
		for i := 0; i < samples; i++ {
			v := math.Float64frombits(binary.LittleEndian.Uint64(f.Data[8*i:]))
			binary.LittleEndian.PutUint16(r.out.Data[2*i:], uint16(clampS16(v)))
		}
	}

	r.out.Format = media.FormatS16
	r.out.Rate = r.rate
	r.out.Layout = r.layout

	return &r.out, nil
}

// clampS16 scales a [-1, 1] float sample to 16-bit with saturation.
func clampS16(v float64) int16 {
	v = math.Round(v * 32768)
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}

	return int16(v)
}
