// SPDX-License-Identifier: EPL-2.0

// Package keyfind estimates the musical key of accumulated audio. It
// folds a Hann-windowed short-time spectrum into a 72-band chromagram
// (six octaves of semitone bands from A0) and correlates that against
// rotated major and minor tone profiles.
package keyfind

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/Stepan-Kasyanenko/keyfinder-cli/media"
)

// Key is an estimated musical key: the 24 tonic/mode pairs interleaved
// ascending from A, then silence.
type Key int

const (
	KeyAMajor Key = iota
	KeyAMinor
	KeyBFlatMajor
	KeyBFlatMinor
	KeyBMajor
	KeyBMinor
	KeyCMajor
	KeyCMinor
	KeyDFlatMajor
	KeyDFlatMinor
	KeyDMajor
	KeyDMinor
	KeyEFlatMajor
	KeyEFlatMinor
	KeyEMajor
	KeyEMinor
	KeyFMajor
	KeyFMinor
	KeyGFlatMajor
	KeyGFlatMinor
	KeyGMajor
	KeyGMinor
	KeyAFlatMajor
	KeyAFlatMinor
	KeySilence
)

// KeyCount is the number of non-silent keys.
const KeyCount = 24

var keyNames = [...]string{
	"A", "Am", "Bb", "Bbm", "B", "Bm", "C", "Cm", "Db", "Dbm", "D", "Dm",
	"Eb", "Ebm", "E", "Em", "F", "Fm", "Gb", "Gbm", "G", "Gm", "Ab", "Abm",
}

func (k Key) String() string {
	if k >= 0 && int(k) < len(keyNames) {
		return keyNames[k]
	}

	return "silence"
}

// ErrNoFrameRate reports audio whose frame rate was never recorded,
// which leaves the spectrum with no frequency axis.
var ErrNoFrameRate = errors.New("audio data carries no frame rate")

const (
	// baseFrequency anchors band 0 at A0.
	baseFrequency = 27.5

	// fftSize and hopSize shape the short-time transform at the
	// analysis rate. 16384 samples at 4410 Hz resolve well under a
	// semitone in the lowest octave.
	fftSize = 16384
	hopSize = fftSize / 2
)

// quarterTone bounds how far an FFT bin may sit from a band's center
// frequency and still count toward it.
var quarterTone = math.Pow(2, 1.0/24)

// Finder estimates keys against one pair of tone profiles. The zero
// value is not usable; construct with New or NewWithProfiles. A Finder
// is stateless across calls and safe for concurrent use.
type Finder struct {
	major []float64
	minor []float64
}

// New returns a Finder using the standard profiles.
func New() *Finder {
	return &Finder{
		major: BuildToneProfile(MajorProfile),
		minor: BuildToneProfile(MinorProfile),
	}
}

// NewWithProfiles returns a Finder with custom semitone weights,
// expanded over the octaves like the standard ones.
func NewWithProfiles(major, minor [semitones]float64) *Finder {
	return &Finder{
		major: BuildToneProfile(major),
		minor: BuildToneProfile(minor),
	}
}

// KeyOfAudio estimates the key of the accumulated samples. Audio with
// no samples, or whose spectrum carries no tonal energy at all, is
// KeySilence.
func (f *Finder) KeyOfAudio(a *media.AudioData) (Key, error) {
	if a.Len() == 0 {
		return KeySilence, nil
	}
	if a.FrameRate() <= 0 {
		return KeySilence, ErrNoFrameRate
	}

	mono := collapseMono(a.Samples(), max(a.Channels(), 1))
	mono, rate := decimate(mono, a.FrameRate(), analysisRate)

	chroma := chromagram(mono, rate)

	return f.classify(chroma), nil
}

// chromagram folds the short-time spectrum of mono samples into one
// accumulated 72-band vector. Windows are Hann-weighted and the final
// partial window is zero-padded.
func chromagram(mono []float64, rate int) []float64 {
	fft := fourier.NewFFT(fftSize)
	win := hann(fftSize)

	chroma := make([]float64, bands)
	buf := make([]float64, fftSize)
	var coeffs []complex128

	for start := 0; start == 0 || start < len(mono); start += hopSize {
		for k := range buf {
			if start+k < len(mono) {
				buf[k] = mono[start+k] * win[k]
			} else {
				buf[k] = 0
			}
		}

		coeffs = fft.Coefficients(coeffs, buf)
		accumulateBands(chroma, coeffs, rate)
	}

	return chroma
}

// accumulateBands adds each band's spectral magnitude into chroma. A
// band collects every bin within a quarter tone of its center; bands
// too narrow for a single bin take the nearest one.
func accumulateBands(chroma []float64, coeffs []complex128, rate int) {
	binHz := float64(rate) / fftSize

	for b := range chroma {
		center := baseFrequency * math.Pow(2, float64(b)/semitones)
		if center >= float64(rate)/2 {
			break
		}

		lo := int(math.Ceil(center / quarterTone / binHz))
		hi := int(math.Floor(center * quarterTone / binHz))
		if hi < lo {
			lo = int(math.Round(center / binHz))
			hi = lo
		}

		for bin := max(lo, 0); bin <= hi && bin < len(coeffs); bin++ {
			chroma[b] += cmplx.Abs(coeffs[bin])
		}
	}
}

func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}

	return w
}

// classify picks the tonic and mode whose rotated profile correlates
// best with the chromagram. An all-zero chromagram is silence.
func (f *Finder) classify(chroma []float64) Key {
	silent := true
	for _, c := range chroma {
		if c != 0 {
			silent = false
			break
		}
	}
	if silent {
		return KeySilence
	}

	best := KeySilence
	bestScore := math.Inf(-1)

	for tonic := 0; tonic < semitones; tonic++ {
		if s := correlation(chroma, f.major, tonic); s > bestScore {
			bestScore = s
			best = Key(2 * tonic)
		}
		if s := correlation(chroma, f.minor, tonic); s > bestScore {
			bestScore = s
			best = Key(2*tonic + 1)
		}
	}

	return best
}

// correlation is the cosine similarity between the chromagram and the
// profile rotated so its tonic sits at the given semitone.
func correlation(chroma, profile []float64, tonic int) float64 {
	var dot, cc, pp float64

	for b, c := range chroma {
		s := b % semitones
		p := profile[b-s+((s-tonic+semitones)%semitones)]

		dot += c * p
		cc += c * c
		pp += p * p
	}

	if cc == 0 || pp == 0 {
		return 0
	}

	return dot / math.Sqrt(cc*pp)
}
