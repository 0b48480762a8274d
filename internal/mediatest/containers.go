// SPDX-License-Identifier: EPL-2.0

package mediatest

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// PCM16LE packs samples as little-endian 16-bit PCM.
func PCM16LE(samples []int16) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}

	return out
}

// PCM16BE packs samples as big-endian 16-bit PCM.
func PCM16BE(samples []int16) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.BigEndian.PutUint16(out[2*i:], uint16(s))
	}

	return out
}

// PCMF32LE packs samples as little-endian 32-bit IEEE floats.
func PCMF32LE(samples []float32) []byte {
	out := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(s))
	}

	return out
}

// PCMF32BE packs samples as big-endian 32-bit IEEE floats.
func PCMF32BE(samples []float32) []byte {
	out := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.BigEndian.PutUint32(out[4*i:], math.Float32bits(s))
	}

	return out
}

// WAV16 encodes interleaved 16-bit samples as a canonical PCM WAV file.
func WAV16(rate, channels int, samples []int16) []byte {
	ws := &writeSeeker{}

	enc := wav.NewEncoder(ws, rate, 16, channels, 1)
	if err := enc.Write(intBuffer(rate, channels, samples)); err != nil {
		panic(fmt.Sprintf("mediatest: encoding wav: %v", err))
	}
	if err := enc.Close(); err != nil {
		panic(fmt.Sprintf("mediatest: closing wav: %v", err))
	}

	return ws.Bytes()
}

// WAVRaw assembles a WAV file by hand for the format tags the go-audio
// encoder cannot write: float, companded and the PCM widths beyond 16
// bits. payload is the raw data chunk.
func WAVRaw(tag uint16, bitsPerSample, rate, channels int, payload []byte) []byte {
	blockAlign := channels * bitsPerSample / 8
	out := make([]byte, 0, 44+len(payload))

	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(36+len(payload)))
	out = append(out, "WAVE"...)

	out = append(out, "fmt "...)
	out = binary.LittleEndian.AppendUint32(out, 16)
	out = binary.LittleEndian.AppendUint16(out, tag)
	out = binary.LittleEndian.AppendUint16(out, uint16(channels))
	out = binary.LittleEndian.AppendUint32(out, uint32(rate))
	out = binary.LittleEndian.AppendUint32(out, uint32(rate*blockAlign))
	out = binary.LittleEndian.AppendUint16(out, uint16(blockAlign))
	out = binary.LittleEndian.AppendUint16(out, uint16(bitsPerSample))

	out = append(out, "data"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))
	out = append(out, payload...)

	return out
}

// wavSubFormatSuffix is the tail of the WAVE_FORMAT_EXTENSIBLE SubFormat
// GUID; the leading four bytes carry the real format tag.
var wavSubFormatSuffix = []byte{0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71}

// WAVExtensible assembles a WAVE_FORMAT_EXTENSIBLE file with the given
// channel mask and the real format tag tucked into the SubFormat GUID.
func WAVExtensible(subTag uint16, bitsPerSample, rate, channels int, mask uint32, payload []byte) []byte {
	blockAlign := channels * bitsPerSample / 8
	out := make([]byte, 0, 68+len(payload))

	out = append(out, "RIFF"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(60+len(payload)))
	out = append(out, "WAVE"...)

	out = append(out, "fmt "...)
	out = binary.LittleEndian.AppendUint32(out, 40)
	out = binary.LittleEndian.AppendUint16(out, 0xFFFE)
	out = binary.LittleEndian.AppendUint16(out, uint16(channels))
	out = binary.LittleEndian.AppendUint32(out, uint32(rate))
	out = binary.LittleEndian.AppendUint32(out, uint32(rate*blockAlign))
	out = binary.LittleEndian.AppendUint16(out, uint16(blockAlign))
	out = binary.LittleEndian.AppendUint16(out, uint16(bitsPerSample))
	out = binary.LittleEndian.AppendUint16(out, 22) // cbSize
	out = binary.LittleEndian.AppendUint16(out, uint16(bitsPerSample))
	out = binary.LittleEndian.AppendUint32(out, mask)
	out = binary.LittleEndian.AppendUint16(out, subTag)
	out = append(out, 0x00, 0x00)
	out = append(out, wavSubFormatSuffix...)

	out = append(out, "data"...)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))
	out = append(out, payload...)

	return out
}

// AIFF16 encodes interleaved 16-bit samples as a plain AIFF file.
func AIFF16(rate, channels int, samples []int16) []byte {
	ws := &writeSeeker{}

	enc := aiff.NewEncoder(ws, rate, 16, channels)
	if err := enc.Write(intBuffer(rate, channels, samples)); err != nil {
		panic(fmt.Sprintf("mediatest: encoding aiff: %v", err))
	}
	if err := enc.Close(); err != nil {
		panic(fmt.Sprintf("mediatest: closing aiff: %v", err))
	}

	return ws.Bytes()
}

// AIFFRaw assembles an AIFF or AIFF-C file by hand. formType is "AIFF"
// or "AIFC"; compression is the four-character AIFF-C compression type
// and is ignored for plain AIFF.
func AIFFRaw(formType, compression string, bitsPerSample, rate, channels int, payload []byte) []byte {
	commSize := 18
	if formType == "AIFC" {
		commSize = 22
	}

	width := max(bitsPerSample/8, 1)
	frames := len(payload) / (channels * width)

	ssndSize := 8 + len(payload)
	formSize := 4 + 8 + commSize + 8 + ssndSize

	out := make([]byte, 0, 8+formSize)
	out = append(out, "FORM"...)
	out = binary.BigEndian.AppendUint32(out, uint32(formSize))
	out = append(out, formType...)

	out = append(out, "COMM"...)
	out = binary.BigEndian.AppendUint32(out, uint32(commSize))
	out = binary.BigEndian.AppendUint16(out, uint16(channels))
	out = binary.BigEndian.AppendUint32(out, uint32(frames))
	out = binary.BigEndian.AppendUint16(out, uint16(bitsPerSample))
	rate80 := float80Bytes(float64(rate))
	out = append(out, rate80[:]...)
	if formType == "AIFC" {
		out = append(out, compression[:4]...)
	}

	out = append(out, "SSND"...)
	out = binary.BigEndian.AppendUint32(out, uint32(ssndSize))
	out = binary.BigEndian.AppendUint32(out, 0) // offset
	out = binary.BigEndian.AppendUint32(out, 0) // block size
	out = append(out, payload...)

	return out
}

// float80Bytes encodes a positive sample rate as the 80-bit extended
// float AIFF stores in its COMM chunk.
func float80Bytes(v float64) [10]byte {
	var out [10]byte
	if v <= 0 {
		return out
	}

	mant := uint64(v)
	high := 63 - bits.LeadingZeros64(mant)

	binary.BigEndian.PutUint16(out[0:2], uint16(16383+high))
	binary.BigEndian.PutUint64(out[2:10], mant<<(63-high))

	return out
}

// AU assembles a Sun AU file with a four-byte annotation field, which
// readers must skip.
func AU(encoding uint32, rate, channels int, payload []byte) []byte {
	out := make([]byte, 0, 28+len(payload))

	out = append(out, ".snd"...)
	out = binary.BigEndian.AppendUint32(out, 28)
	out = binary.BigEndian.AppendUint32(out, uint32(len(payload)))
	out = binary.BigEndian.AppendUint32(out, encoding)
	out = binary.BigEndian.AppendUint32(out, uint32(rate))
	out = binary.BigEndian.AppendUint32(out, uint32(channels))
	out = append(out, 0x00, 0x00, 0x00, 0x00)
	out = append(out, payload...)

	return out
}

// OggPage assembles one Ogg page holding the given packets, each
// terminated on this page. The CRC field is left zero.
func OggPage(serial, seq uint32, flags byte, packets ...[]byte) []byte {
	var lacing, payload []byte
	for _, p := range packets {
		n := len(p)
		for n >= 255 {
			lacing = append(lacing, 255)
			n -= 255
		}
		lacing = append(lacing, byte(n))
		payload = append(payload, p...)
	}

	return OggPageRaw(serial, seq, flags, lacing, payload)
}

// OggPageRaw assembles an Ogg page from an explicit lacing table, so
// tests can build packets that continue onto the next page.
func OggPageRaw(serial, seq uint32, flags byte, lacing, payload []byte) []byte {
	if len(lacing) > 255 {
		panic(fmt.Sprintf("mediatest: %d lacing values on one page", len(lacing)))
	}

	out := make([]byte, 0, 27+len(lacing)+len(payload))
	out = append(out, "OggS"...)
	out = append(out, 0x00, flags)
	out = append(out, make([]byte, 8)...) // granule position
	out = binary.LittleEndian.AppendUint32(out, serial)
	out = binary.LittleEndian.AppendUint32(out, seq)
	out = append(out, make([]byte, 4)...) // crc
	out = append(out, byte(len(lacing)))
	out = append(out, lacing...)
	out = append(out, payload...)

	return out
}

// VorbisID builds a Vorbis identification header packet.
func VorbisID(channels, rate int) []byte {
	out := make([]byte, 0, 30)
	out = append(out, 0x01)
	out = append(out, "vorbis"...)
	out = binary.LittleEndian.AppendUint32(out, 0) // version
	out = append(out, byte(channels))
	out = binary.LittleEndian.AppendUint32(out, uint32(rate))
	out = append(out, make([]byte, 12)...) // bitrate fields
	out = append(out, 0xB8)                // block sizes 256/2048
	out = append(out, 0x01)                // framing

	return out
}

// VorbisComment builds an empty Vorbis comment header packet.
func VorbisComment() []byte {
	out := make([]byte, 0, 15)
	out = append(out, 0x03)
	out = append(out, "vorbis"...)
	out = binary.LittleEndian.AppendUint32(out, 0) // vendor length
	out = binary.LittleEndian.AppendUint32(out, 0) // comment count
	out = append(out, 0x01)                        // framing

	return out
}

// VorbisSetupStub builds a packet with the setup header magic but no
// codebooks. Demuxers treat it as opaque; a decoder rejects it.
func VorbisSetupStub() []byte {
	return append([]byte{0x05}, "vorbis\x00\x00\x00\x00"...)
}

// OpusHead builds an Opus identification header packet.
func OpusHead(channels int) []byte {
	out := make([]byte, 0, 19)
	out = append(out, "OpusHead"...)
	out = append(out, 0x01, byte(channels))
	out = binary.LittleEndian.AppendUint16(out, 312) // pre-skip
	out = binary.LittleEndian.AppendUint32(out, 48000)
	out = binary.LittleEndian.AppendUint16(out, 0) // output gain
	out = append(out, 0x00)                        // mapping family

	return out
}

// TheoraID builds a Theora identification header packet, padded to the
// full 42 bytes real encoders emit.
func TheoraID() []byte {
	out := make([]byte, 42)
	out[0] = 0x80
	copy(out[1:7], "theora")
	out[7], out[8], out[9] = 3, 2, 1 // version

	return out
}

// OggVorbis assembles a complete single-stream Ogg Vorbis file: one
// identification page, one page with the comment and setup headers, and
// one page per data packet.
func OggVorbis(serial uint32, channels, rate int, packets ...[]byte) []byte {
	out := OggPage(serial, 0, 0x02, VorbisID(channels, rate))
	out = append(out, OggPage(serial, 1, 0, VorbisComment(), VorbisSetupStub())...)
	for i, p := range packets {
		out = append(out, OggPage(serial, uint32(2+i), 0, p)...)
	}

	return out
}

func intBuffer(rate, channels int, samples []int16) *goaudio.IntBuffer {
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: rate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		buf.Data[i] = int(s)
	}

	return buf
}
