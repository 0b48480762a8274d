// SPDX-License-Identifier: EPL-2.0

// Package notation maps estimated keys onto display labels in the
// spellings DJs and musicians actually use.
package notation

import (
	"fmt"
	"sort"

	"github.com/Stepan-Kasyanenko/keyfinder-cli/keyfind"
)

// Notation is a display table indexed by the 24 non-silent keys.
type Notation [keyfind.KeyCount]string

// Label returns the display string for k, or "" for silence and
// anything else outside the table.
func (n *Notation) Label(k keyfind.Key) string {
	if k < 0 || int(k) >= len(n) {
		return ""
	}

	return n[k]
}

// Standard spells keys as note names, minor marked with an m suffix.
var Standard = Notation{
	"A", "Am", "Bb", "Bbm", "B", "Bm", "C", "Cm",
	"Db", "Dbm", "D", "Dm", "Eb", "Ebm", "E", "Em",
	"F", "Fm", "Gb", "Gbm", "G", "Gm", "Ab", "Abm",
}

// Camelot numbers keys around the harmonic wheel, majors as B and
// minors as A.
var Camelot = Notation{
	"11B", "8A", "6B", "3A", "1B", "10A", "8B", "5A",
	"3B", "12A", "10B", "7A", "5B", "2A", "12B", "9A",
	"7B", "4A", "2B", "11A", "9B", "6A", "4B", "1A",
}

// OpenKey is the variant of the wheel used by Traktor, majors as d and
// minors as m.
var OpenKey = Notation{
	"4d", "1m", "11d", "8m", "6d", "3m", "1d", "10m",
	"8d", "5m", "3d", "12m", "10d", "7m", "5d", "2m",
	"12d", "9m", "7d", "4m", "2d", "11m", "9d", "6m",
}

var tables = map[string]*Notation{
	"standard": &Standard,
	"camelot":  &Camelot,
	"openkey":  &OpenKey,
}

// Lookup resolves a notation by name.
func Lookup(name string) (*Notation, error) {
	n, ok := tables[name]
	if !ok {
		return nil, fmt.Errorf("invalid key notation %q", name)
	}

	return n, nil
}

// Names lists the known notation names in stable order.
func Names() []string {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
