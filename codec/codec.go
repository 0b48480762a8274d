// SPDX-License-Identifier: EPL-2.0

// Package codec turns compressed packets into raw sample frames and
// normalizes those frames to the canonical 16-bit format.
//
// A Session consumes packet bytes incrementally: each Decode call
// reports how many bytes it used, and a packet larger than the
// decoder's appetite is simply offered again minus the consumed prefix.
// Decode errors mark one bad unit and never poison the session.
package codec

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/Stepan-Kasyanenko/keyfinder-cli/media"
)

var (
	// ErrUnsupportedCodec reports a stream whose codec has no
	// registered decoder.
	ErrUnsupportedCodec = errors.New("unsupported codec")

	// ErrCodecOpen reports a decoder that failed to initialize for a
	// stream, bad setup headers included.
	ErrCodecOpen = errors.New("unable to open codec")

	// ErrResampleOpen reports resampler parameters no converter
	// exists for.
	ErrResampleOpen = errors.New("unable to configure resampler")

	// ErrResampleConvert reports a frame the configured resampler
	// could not convert.
	ErrResampleConvert = errors.New("sample format conversion failed")
)

// Session decodes one stream. Sessions are not safe for concurrent
// use.
type Session interface {
	// Decode consumes a prefix of data and reports its length. A nil
	// frame with a nil error means the decoder needs more input
	// before it can emit samples. A non-nil error marks the offered
	// bytes as one undecodable unit; the session stays usable.
	//
	// Returned frames are only valid until the next Decode call.
	Decode(data []byte) (consumed int, frame *media.Frame, err error)

	// Close releases decoder state.
	Close() error
}

// Factory builds a decoding session for one stream.
type Factory func(desc media.StreamDescriptor, log *slog.Logger) (Session, error)

// Registry maps codec names to session factories.
type Registry struct {
	mtx    sync.Mutex
	codecs map[media.Codec]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[media.Codec]Factory)}
}

// Register adds a factory, replacing any previous one for the same
// codec.
func (r *Registry) Register(id media.Codec, f Factory) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[id] = f
}

// Get returns the factory registered for id.
func (r *Registry) Get(id media.Codec) (Factory, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	f, ok := r.codecs[id]

	return f, ok
}

// Open builds a session for the stream described by desc. It fails
// with ErrUnsupportedCodec when no decoder is registered for the
// stream's codec; factory failures wrap ErrCodecOpen.
func (r *Registry) Open(desc media.StreamDescriptor, log *slog.Logger) (Session, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	f, ok := r.Get(desc.Codec)
	if !ok {
		return nil, fmt.Errorf("codec %q: %w", desc.Codec, ErrUnsupportedCodec)
	}

	s, err := f(desc, log)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// DefaultRegistry returns a registry with every built-in decoder
// registered: the PCM family, the G.711 companding pair and Vorbis.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	registerPCM(r)
	registerG711(r)
	r.Register(media.CodecVorbis, newVorbisSession)

	return r
}
