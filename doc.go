// SPDX-License-Identifier: EPL-2.0

// Package keyfinder decodes audio files into a normalized sample
// buffer and estimates their musical key.
//
// Any supported input, whatever its container, codec, sample format or
// byte order, comes out the same way: 16-bit samples widened to float,
// interleaved in decode order and tagged with the stream's frame rate
// and channel count. The key estimation stage then only ever sees that
// one canonical shape.
//
// # Supported Formats
//
// Containers are recognized by their magic bytes:
//   - WAV/RIFF, including WAVE_FORMAT_EXTENSIBLE
//   - AIFF and AIFF-C
//   - Sun AU (.snd)
//   - Ogg, selecting the first audio stream among multiplexed ones
//   - MP3, decoded at the container boundary via go-mp3
//
// Decoders cover the PCM family (unsigned 8-bit through 64-bit float,
// both byte orders), the G.711 companding pair and Vorbis.
//
// # Quick Start
//
//	dec := keyfinder.New(nil)
//
//	key, err := dec.FindKey("track.ogg", keyfind.New())
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(key) // e.g. "Am"
//
// To work with the raw samples instead:
//
//	var audio media.AudioData
//	if err := dec.DecodeFile("track.ogg", &audio); err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(audio.FrameRate(), audio.Channels(), audio.Len())
//
// # Pipeline
//
// For control over the individual stages use the subpackages directly:
// container opens and demuxes, codec decodes packets and normalizes
// frames, decode drives the loop, keyfind estimates the key and
// notation formats it for display.
//
//	src, _ := container.DefaultRegistry().Open("track.wav", nil)
//	defer src.Close()
//	_ = src.Probe()
//
//	var audio media.AudioData
//	_ = decode.FillAudioData(src, codec.DefaultRegistry(), &audio, nil)
//
// Errors stay distinguishable along the whole chain: errors.Is
// separates an unrecognized container from a corrupt one, a missing
// audio stream from an unsupported codec, and a decoder that gave up
// from a resampler that could not convert.
package keyfinder
