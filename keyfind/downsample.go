// SPDX-License-Identifier: EPL-2.0

package keyfind

// analysisRate is the frame rate the chromagram runs at. Decimating
// first keeps the spectral resolution per band high without growing the
// transform.
const analysisRate = 4410

// collapseMono averages interleaved channels into a single channel.
func collapseMono(samples []float32, channels int) []float64 {
	if channels <= 1 {
		out := make([]float64, len(samples))
		for i, v := range samples {
			out[i] = float64(v)
		}

		return out
	}

	frames := len(samples) / channels
	out := make([]float64, frames)
	inv := 1.0 / float64(channels)

	for f := 0; f < frames; f++ {
		sum := 0.0
		base := f * channels
		for c := 0; c < channels; c++ {
			sum += float64(samples[base+c])
		}
		out[f] = sum * inv
	}

	return out
}

// decimate resamples mono samples down to dstRate using a one-pole
// low-pass against aliasing and Catmull-Rom interpolation between
// frames. Rates at or below dstRate pass through unchanged.
func decimate(samples []float64, srcRate, dstRate int) ([]float64, int) {
	if srcRate <= dstRate || len(samples) == 0 {
		return samples, srcRate
	}

	const alpha = 0.5
	filtered := make([]float64, len(samples))
	state := samples[0]
	for i, v := range samples {
		state = alpha*v + (1-alpha)*state
		filtered[i] = state
	}

	ratio := float64(srcRate) / float64(dstRate)
	out := make([]float64, 0, int(float64(len(filtered))/ratio)+1)

	last := len(filtered) - 1
	for pos := 0.0; int(pos) < last; pos += ratio {
		i := int(pos)
		x := pos - float64(i)

		y0 := filtered[max(i-1, 0)]
		y1 := filtered[i]
		y2 := filtered[min(i+1, last)]
		y3 := filtered[min(i+2, last)]

		out = append(out, cubicInterpolate(y0, y1, y2, y3, x))
	}

	return out, dstRate
}

// cubicInterpolate evaluates a Catmull-Rom spline at fractional
// position x between y1 and y2.
func cubicInterpolate(y0, y1, y2, y3, x float64) float64 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return a0*x*x*x + a1*x*x + a2*x + a3
}
