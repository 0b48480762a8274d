// SPDX-License-Identifier: EPL-2.0

package keyfind

const (
	// semitones is the number of pitch classes per octave, counted
	// from A.
	semitones = 12

	// octaves is the analysis range: six octaves up from A0.
	octaves = 6

	// bands is the chromagram resolution, one band per semitone per
	// octave.
	bands = semitones * octaves
)

// MajorProfile and MinorProfile are Sha'ath's listener-derived key
// templates, one weight per semitone starting at the tonic.
var (
	MajorProfile = [semitones]float64{
		7.23900502618145225142,
		3.50351166725158691406,
		3.58445177536649417505,
		2.84511816478676315967,
		5.81898892118549859731,
		4.55865057415321039969,
		2.44778850545506543313,
		6.99473192146829525484,
		3.39106613673504853068,
		4.55614256655143456953,
		4.07392666663523606019,
		4.45932757378886890365,
	}

	MinorProfile = [semitones]float64{
		7.00255045060284420089,
		3.14360279015996679775,
		4.35904319714962529275,
		5.40418120718934069657,
		3.67234420879306133756,
		4.08971184917797891956,
		3.90791435991553992579,
		6.19960288562316463867,
		3.63424625625277419871,
		2.87241191079875557435,
		5.35467999794542670600,
		3.83242038595048351013,
	}
)

// octaveWeights scales each octave's contribution to the full-range
// tone profile.
var octaveWeights = [octaves]float64{
	0.39997267549999998559,
	0.55634425248300645173,
	0.52496636345143543600,
	0.60847548384277727607,
	0.59898115679999996974,
	0.49072435317960994006,
}

// BuildToneProfile expands 12 semitone weights into the 72-band
// analysis profile, scaling every octave by its weight. The result is a
// fresh slice on every call.
func BuildToneProfile(weights [semitones]float64) []float64 {
	p := make([]float64, 0, bands)
	for _, w := range octaveWeights {
		for _, s := range weights {
			p = append(p, w*s)
		}
	}

	return p
}
