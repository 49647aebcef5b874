package shazam

import "math"

// hannWindow returns hann(n+2)[1:n+1], the strict-zero-endpoints-removed
// Hann window used to taper each 2048-sample excerpt before the FFT.
func hannWindow(n int) []float64 {
	w := make([]float64, n)
	full := n + 2
	for i := range w {
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i+1)/float64(full-1))
	}
	return w
}
