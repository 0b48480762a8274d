// SPDX-License-Identifier: EPL-2.0

package media

import "github.com/go-audio/audio"

// AudioData accumulates the decoded output of one source: the frame
// rate, the channel count and every sample widened to float32, in
// decode order with channels interleaved. Samples keep the scale of the
// canonical 16-bit representation; they are not normalized to [-1, 1].
//
// The zero value is ready to use. AudioData is append-only: samples are
// never rewritten or dropped once added.
type AudioData struct {
	frameRate int
	channels  int
	samples   []float32
}

// SetFrameRate records the source frame rate in hertz.
func (a *AudioData) SetFrameRate(hz int) { a.frameRate = hz }

// FrameRate returns the recorded frame rate, 0 if never set.
func (a *AudioData) FrameRate() int { return a.frameRate }

// SetChannels records the number of interleaved channels.
func (a *AudioData) SetChannels(n int) { a.channels = n }

// Channels returns the recorded channel count, 0 if never set.
func (a *AudioData) Channels() int { return a.channels }

// Append adds one sample after the existing ones.
func (a *AudioData) Append(sample float32) {
	a.samples = append(a.samples, sample)
}

// Len returns the number of samples accumulated so far, counting each
// channel separately.
func (a *AudioData) Len() int { return len(a.samples) }

// Sample returns the i-th accumulated sample.
func (a *AudioData) Sample(i int) float32 { return a.samples[i] }

// Samples exposes the accumulated samples without copying. The returned
// slice aliases internal storage and must be treated as read-only.
func (a *AudioData) Samples() []float32 { return a.samples }

// Float32Buffer wraps the accumulated samples in a go-audio buffer so
// they can feed anything written against that ecosystem. The buffer
// shares storage with the accumulator.
func (a *AudioData) Float32Buffer() *audio.Float32Buffer {
	return &audio.Float32Buffer{
		Format: &audio.Format{
			NumChannels: a.channels,
			SampleRate:  a.frameRate,
		},
		Data:           a.samples,
		SourceBitDepth: 16,
	}
}
