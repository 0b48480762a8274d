// SPDX-License-Identifier: EPL-2.0

// Package container opens media files, recognizes their container
// format and splits them into streams of compressed packets.
//
// A Registry holds the known formats in sniffing order. Open recognizes
// the container and Probe parses its headers into stream descriptors;
// the two stages fail independently so callers can tell an unreadable
// or foreign file from a recognized but corrupt one.
package container

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/Stepan-Kasyanenko/keyfinder-cli/media"
)

var (
	// ErrUnknownFormat reports that no registered format claimed the
	// file during Open.
	ErrUnknownFormat = errors.New("unrecognized container format")

	// ErrMalformed reports that a recognized container failed header
	// parsing during Probe.
	ErrMalformed = errors.New("malformed container")

	// ErrNotProbed reports a packet read on a source whose Probe was
	// never called or never succeeded.
	ErrNotProbed = errors.New("source has not been probed")
)

// sniffLen is how many leading bytes of a file a Sniff function may see.
const sniffLen = 16

// Demuxer parses one container format, exposing its streams and a
// sequential packet reader.
type Demuxer interface {
	// Streams lists the container's elementary streams in demux order.
	Streams() []media.StreamDescriptor

	// ReadPacket fills pkt with the next compressed unit from any
	// stream, reusing pkt's buffer when it is large enough. It returns
	// io.EOF once the container is exhausted.
	ReadPacket(pkt *media.Packet) error
}

// Format couples a container's sniffing test with its demuxer
// constructor.
type Format struct {
	Name string

	// Sniff reports whether head, the first bytes of a file (at most
	// 16), looks like this format.
	Sniff func(head []byte) bool

	// Open parses the container headers and returns a ready demuxer.
	// The reader is positioned at the start of the file.
	Open func(r io.Reader, log *slog.Logger) (Demuxer, error)
}

// Registry holds container formats in sniffing order. Order matters:
// formats with weak magic (such as MP3) must be registered last.
type Registry struct {
	mtx     sync.Mutex
	formats []Format
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a format to the sniffing order.
func (r *Registry) Register(f Format) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.formats = append(r.formats, f)
}

func (r *Registry) lookup(head []byte) (Format, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	for _, f := range r.formats {
		if f.Sniff(head) {
			return f, true
		}
	}

	return Format{}, false
}

// DefaultRegistry returns a registry with every built-in format
// registered in canonical sniffing order.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(WAVFormat())
	r.Register(AIFFFormat())
	r.Register(AUFormat())
	r.Register(OggFormat())
	r.Register(MP3Format())

	return r
}

// Source is one opened media file. It owns the underlying file handle
// and releases it on Close.
type Source struct {
	path   string
	file   *os.File
	log    *slog.Logger
	format Format
	dmx    Demuxer
}

// Open opens the file at path and matches it against the registered
// formats. The returned source still needs Probe before packets can be
// read. A nil logger disables logging.
func (r *Registry) Open(path string, log *slog.Logger) (*Source, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		f.Close()
		return nil, fmt.Errorf("open source: %w", err)
	}

	format, ok := r.lookup(head[:n])
	if !ok {
		f.Close()
		return nil, fmt.Errorf("open %s: %w", path, ErrUnknownFormat)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("open source: %w", err)
	}

	log.Debug("container recognized", "path", path, "format", format.Name)

	return &Source{path: path, file: f, log: log, format: format}, nil
}

// FormatName returns the name of the recognized container format.
func (s *Source) FormatName() string { return s.format.Name }

// Probe parses the container headers and fills in the stream
// descriptors. It must be called once, before the first ReadPacket.
func (s *Source) Probe() error {
	dmx, err := s.format.Open(s.file, s.log)
	if err != nil {
		return fmt.Errorf("probe %s: %w", s.format.Name, err)
	}

	s.dmx = dmx
	s.log.Debug("container probed", "format", s.format.Name, "streams", len(dmx.Streams()))

	return nil
}

// Streams lists the probed stream descriptors, nil before Probe.
func (s *Source) Streams() []media.StreamDescriptor {
	if s.dmx == nil {
		return nil
	}

	return s.dmx.Streams()
}

// ReadPacket fills pkt with the next compressed unit from any stream.
// It returns io.EOF once the container is exhausted.
func (s *Source) ReadPacket(pkt *media.Packet) error {
	if s.dmx == nil {
		return ErrNotProbed
	}

	return s.dmx.ReadPacket(pkt)
}

// Close releases the underlying file. It is safe to call more than
// once.
func (s *Source) Close() error {
	if s.file == nil {
		return nil
	}

	f := s.file
	s.file = nil

	return f.Close()
}

// growPacket resizes pkt's buffer to n bytes, reusing the existing
// allocation when possible, and returns the buffer.
func growPacket(pkt *media.Packet, n int) []byte {
	if cap(pkt.Data) < n {
		pkt.Data = make([]byte, n)
	}
	pkt.Data = pkt.Data[:n]

	return pkt.Data
}
