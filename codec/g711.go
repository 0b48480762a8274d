// SPDX-License-Identifier: EPL-2.0

package codec

import (
	"encoding/binary"

	"github.com/Stepan-Kasyanenko/keyfinder-cli/media"
)

// G.711 companded bytes expand to 16-bit linear through a 256-entry
// table built once at startup.
var (
	alawTable  = buildALawTable()
	mulawTable = buildMuLawTable()
)

func buildALawTable() [256]int16 {
	var t [256]int16

	for i := range t {
		a := byte(i) ^ 0x55

		v := int(a&0x0F) << 4
		seg := (a & 0x70) >> 4
		switch seg {
		case 0:
			v += 8
		case 1:
			v += 0x108
		default:
			v += 0x108
			v <<= seg - 1
		}

		if a&0x80 == 0 {
			v = -v
		}
		t[i] = int16(v)
	}

	return t
}

func buildMuLawTable() [256]int16 {
	var t [256]int16

	for i := range t {
		u := ^byte(i)

		v := (int(u&0x0F)<<3 + 0x84) << ((u & 0x70) >> 4)
		v -= 0x84

		if u&0x80 != 0 {
			v = -v
		}
		t[i] = int16(v)
	}

	return t
}

// registerG711 wires the companding pair. Both expand straight to the
// canonical 16-bit format.
func registerG711(r *Registry) {
	r.Register(media.CodecALaw, newPCMFactory(1, media.FormatS16, convALaw))
	r.Register(media.CodecMuLaw, newPCMFactory(1, media.FormatS16, convMuLaw))
}

func convALaw(dst, src []byte) {
	for i, b := range src {
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(alawTable[b]))
	}
}

func convMuLaw(dst, src []byte) {
	for i, b := range src {
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(mulawTable[b]))
	}
}
