// SPDX-License-Identifier: EPL-2.0

package media

// StreamDescriptor describes one elementary stream inside a container,
// as reported by the demuxer after probing. Descriptors are plain
// values; pipeline stages that need to refine one (for example to fill
// in a derived channel layout) work on their own copy.
type StreamDescriptor struct {
	// Index is the position of the stream in demux order. Packets
	// carry the same index.
	Index int

	Type  MediaType
	Codec Codec

	// SampleFormat is the format the stream's decoder emits, not the
	// on-disk representation.
	SampleFormat SampleFormat
	SampleRate   int
	Channels     int

	// Layout is LayoutNone when the container carried no speaker
	// placement information.
	Layout ChannelLayout

	// Extradata holds out-of-band codec setup, such as the Vorbis
	// header packets. Nil for self-describing codecs.
	Extradata [][]byte
}

// Packet is one compressed unit read from a container, belonging to the
// stream identified by StreamIndex.
type Packet struct {
	StreamIndex int
	Data        []byte
}

// Frame is a run of decoded interleaved samples sharing one format,
// rate and layout. Data length is always a multiple of the sample
// width; multi-byte formats are stored little-endian.
//
// Decoders and resamplers may reuse the backing array between calls, so
// a Frame is only valid until the next call on the stage that produced
// it.
type Frame struct {
	Format SampleFormat
	Rate   int
	Layout ChannelLayout
	Data   []byte
}

// Samples returns the number of individual samples in the frame,
// counting each channel separately.
func (f *Frame) Samples() int {
	w := f.Format.BytesPerSample()
	if w == 0 {
		return 0
	}
	return len(f.Data) / w
}
