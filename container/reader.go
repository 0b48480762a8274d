// SPDX-License-Identifier: EPL-2.0

package container

import (
	"github.com/Stepan-Kasyanenko/keyfinder-cli/media"
)

// PacketSource is the minimal surface PacketReader needs. *Source
// satisfies it. Accepting an interface here keeps the decode loop
// testable with stub sources.
type PacketSource interface {
	ReadPacket(pkt *media.Packet) error
}

// PacketReader narrows a packet source down to a single stream,
// silently dropping every unit that belongs to another one.
//
// The reader owns one packet buffer and reuses it across calls, so a
// returned packet is only valid until the next call to Next. Dropped
// foreign packets are overwritten the same way, which is what releases
// them.
type PacketReader struct {
	src    PacketSource
	stream int
	pkt    media.Packet
}

// NewPacketReader returns a reader that yields only packets whose
// stream index equals stream.
func NewPacketReader(src PacketSource, stream int) *PacketReader {
	return &PacketReader{src: src, stream: stream}
}

// Next returns the next packet of the selected stream. It reports
// io.EOF once the source is exhausted; any other error comes from the
// underlying source unchanged.
func (r *PacketReader) Next() (*media.Packet, error) {
	for {
		if err := r.src.ReadPacket(&r.pkt); err != nil {
			return nil, err
		}

		if r.pkt.StreamIndex == r.stream {
			return &r.pkt, nil
		}
	}
}
