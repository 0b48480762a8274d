// SPDX-License-Identifier: EPL-2.0

// Package mediatest builds deterministic audio fixtures for tests:
// waveforms as 16-bit sample slices and minimal container files
// assembled in memory.
//
// Builders panic on malformed parameters; a panic here is always a bug
// in the test, not a runtime condition.
package mediatest

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// writeSeeker is an in-memory io.WriteSeeker for encoders that need to
// rewrite headers after the fact.
type writeSeeker struct {
	buf []byte
	pos int64
}

func (ws *writeSeeker) Write(p []byte) (int, error) {
	need := ws.pos + int64(len(p))
	if need > int64(len(ws.buf)) {
		if need > int64(cap(ws.buf)) {
			grown := make([]byte, need, need*2)
			copy(grown, ws.buf)
			ws.buf = grown
		} else {
			ws.buf = ws.buf[:need]
		}
	}

	copy(ws.buf[ws.pos:], p)
	ws.pos = need

	return len(p), nil
}

func (ws *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = ws.pos + offset
	case io.SeekEnd:
		pos = int64(len(ws.buf)) + offset
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}

	if pos < 0 {
		return 0, fmt.Errorf("negative position: %d", pos)
	}
	ws.pos = pos

	return pos, nil
}

func (ws *writeSeeker) Bytes() []byte { return ws.buf }

// Sine16 generates frames of a sine wave at half amplitude as
// interleaved 16-bit samples, every channel carrying the same signal.
func Sine16(rate, channels, frames int, freq float64) []int16 {
	out := make([]int16, 0, frames*channels)
	for i := 0; i < frames; i++ {
		v := int16(math.Round(math.Sin(2*math.Pi*freq*float64(i)/float64(rate)) * 16384))
		for c := 0; c < channels; c++ {
			out = append(out, v)
		}
	}

	return out
}

// Silence16 generates all-zero interleaved samples.
func Silence16(channels, frames int) []int16 {
	return make([]int16, channels*frames)
}

// Ramp16 generates samples 0, 1, 2, ... so tests can check ordering.
func Ramp16(n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(i)
	}

	return out
}

// WriteFile drops data into a temp file cleaned up with the test and
// returns its path.
func WriteFile(tb testing.TB, name string, data []byte) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("writing fixture %s: %v", name, err)
	}

	return path
}
