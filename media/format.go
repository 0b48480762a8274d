// SPDX-License-Identifier: EPL-2.0

// Package media holds the types shared by every stage of the decode
// pipeline: stream descriptors, compressed packets, decoded frames and
// the AudioData accumulator that collects normalized samples.
package media

import "math/bits"

// MediaType classifies an elementary stream inside a container.
type MediaType uint8

const (
	TypeUnknown MediaType = iota
	TypeAudio
	TypeVideo
	TypeData
)

// String returns a short lowercase name for the media type.
func (t MediaType) String() string {
	switch t {
	case TypeAudio:
		return "audio"
	case TypeVideo:
		return "video"
	case TypeData:
		return "data"
	default:
		return "unknown"
	}
}

// SampleFormat identifies the in-memory representation of decoded PCM
// samples. FormatS16 is the canonical format the pipeline normalizes to;
// multi-byte formats are little-endian once decoded.
type SampleFormat uint8

const (
	FormatNone SampleFormat = iota
	FormatU8
	FormatS16
	FormatS32
	FormatF32
	FormatF64
)

// BytesPerSample returns the width of one sample in bytes, or 0 for
// FormatNone.
func (f SampleFormat) BytesPerSample() int {
	switch f {
	case FormatU8:
		return 1
	case FormatS16:
		return 2
	case FormatS32, FormatF32:
		return 4
	case FormatF64:
		return 8
	default:
		return 0
	}
}

func (f SampleFormat) String() string {
	switch f {
	case FormatU8:
		return "u8"
	case FormatS16:
		return "s16"
	case FormatS32:
		return "s32"
	case FormatF32:
		return "f32"
	case FormatF64:
		return "f64"
	default:
		return "none"
	}
}

// ChannelLayout is a bitmask of speaker positions. A zero layout means
// the container did not carry one; DefaultLayout derives a usable value
// from the channel count.
type ChannelLayout uint64

const (
	SpeakerFrontLeft ChannelLayout = 1 << iota
	SpeakerFrontRight
	SpeakerFrontCenter
	SpeakerLowFrequency
	SpeakerBackLeft
	SpeakerBackRight
	SpeakerBackCenter
	SpeakerSideLeft
	SpeakerSideRight
)

const (
	LayoutNone   ChannelLayout = 0
	LayoutMono                 = SpeakerFrontCenter
	LayoutStereo               = SpeakerFrontLeft | SpeakerFrontRight
	Layout2Point1              = LayoutStereo | SpeakerLowFrequency
	LayoutQuad                 = LayoutStereo | SpeakerBackLeft | SpeakerBackRight
	Layout5Point0              = LayoutStereo | SpeakerFrontCenter | SpeakerBackLeft | SpeakerBackRight
	Layout5Point1              = Layout5Point0 | SpeakerLowFrequency
	Layout6Point1              = Layout5Point1 | SpeakerBackCenter
	Layout7Point1              = Layout5Point1 | SpeakerSideLeft | SpeakerSideRight
)

// Channels returns the number of speakers present in the layout.
func (l ChannelLayout) Channels() int {
	return bits.OnesCount64(uint64(l))
}

func (l ChannelLayout) String() string {
	switch l {
	case LayoutMono:
		return "mono"
	case LayoutStereo:
		return "stereo"
	case Layout2Point1:
		return "2.1"
	case LayoutQuad:
		return "quad"
	case Layout5Point0:
		return "5.0"
	case Layout5Point1:
		return "5.1"
	case Layout6Point1:
		return "6.1"
	case Layout7Point1:
		return "7.1"
	case LayoutNone:
		return "none"
	default:
		return "custom"
	}
}

// DefaultLayout maps a channel count to the conventional speaker layout
// for that count. Counts with no convention map to LayoutNone.
func DefaultLayout(channels int) ChannelLayout {
	switch channels {
	case 1:
		return LayoutMono
	case 2:
		return LayoutStereo
	case 3:
		return Layout2Point1
	case 4:
		return LayoutQuad
	case 5:
		return Layout5Point0
	case 6:
		return Layout5Point1
	case 7:
		return Layout6Point1
	case 8:
		return Layout7Point1
	default:
		return LayoutNone
	}
}

// Codec names an encoding the way demuxers and decoders agree on it.
type Codec string

const (
	CodecNone     Codec = ""
	CodecPCMU8    Codec = "pcm_u8"
	CodecPCMS8    Codec = "pcm_s8"
	CodecPCMS16LE Codec = "pcm_s16le"
	CodecPCMS16BE Codec = "pcm_s16be"
	CodecPCMS24LE Codec = "pcm_s24le"
	CodecPCMS24BE Codec = "pcm_s24be"
	CodecPCMS32LE Codec = "pcm_s32le"
	CodecPCMS32BE Codec = "pcm_s32be"
	CodecPCMF32LE Codec = "pcm_f32le"
	CodecPCMF32BE Codec = "pcm_f32be"
	CodecPCMF64LE Codec = "pcm_f64le"
	CodecPCMF64BE Codec = "pcm_f64be"
	CodecALaw     Codec = "pcm_alaw"
	CodecMuLaw    Codec = "pcm_mulaw"
	CodecVorbis   Codec = "vorbis"
	CodecOpus     Codec = "opus"
	CodecTheora   Codec = "theora"
)
