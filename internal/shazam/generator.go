package shazam

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/metaaudio/fingerprint/internal/ring"
)

const (
	windowSize = 2048
	hopSize    = 128
	fftBins    = 1025
	fftHistory = 256

	magnitudeFloor = 1e-10

	// DefaultMaxTimeSeconds is the emission cutoff used unless a caller
	// raises it (the file driver raises it to 12 for a longer window).
	DefaultMaxTimeSeconds = 3.1
	// MaxPeaks is the total-peak-count emission cutoff.
	MaxPeaks = 255

	peakLookback        = 46
	spreadLookback      = 49
	warmupHops          = 46
	spreadBinNeighbors  = 1023
)

var hannCoeffs = hannWindow(windowSize)

var neighborOffsets = []int{-10, -7, -4, -3, 1, 2, 5, 8}
var otherAdjacentOffsets = buildOtherAdjacentOffsets()

func buildOtherAdjacentOffsets() []int {
	offsets := []int{-53, -45}
	for o := 165; o <= 200; o += 7 {
		offsets = append(offsets, o)
	}
	for o := 214; o <= 249; o += 7 {
		offsets = append(offsets, o)
	}
	return offsets
}

// Generator is a streaming fingerprint generator. Feed pushes decoded int16
// samples; GetNextSignature drains accumulated hops into a Signature once
// an emission cutoff is reached.
type Generator struct {
	MaxTimeSeconds float64

	pending []int16

	samplesRing       *ring.Numeric
	fftOutputs        *ring.Spectrum
	spreadFFTOutputs  *ring.Spectrum
	numSpreadFFTsDone int

	fft *fourier.FFT

	sig Signature

	excerpt [windowSize]float64
	windowed [windowSize]float64
}

// NewGenerator returns an empty generator for 16 kHz mono int16 input.
func NewGenerator() *Generator {
	g := &Generator{
		MaxTimeSeconds: DefaultMaxTimeSeconds,
		fft:            fourier.NewFFT(windowSize),
	}
	g.reset()
	return g
}

func (g *Generator) reset() {
	g.samplesRing = ring.NewNumeric(windowSize)
	g.fftOutputs = ring.NewSpectrum(fftHistory, fftBins)
	g.spreadFFTOutputs = ring.NewSpectrum(fftHistory, fftBins)
	g.numSpreadFFTsDone = 0
	g.sig = Signature{SampleRateHz: 16000}
}

// Feed appends samples to the generator's pending input queue.
func (g *Generator) Feed(samples []int16) {
	g.pending = append(g.pending, samples...)
}

func (g *Generator) totalPeaks() int {
	n := 0
	for _, peaks := range g.sig.PeaksByBand {
		n += len(peaks)
	}
	return n
}

func (g *Generator) cutoffReached() bool {
	return float64(g.sig.NumberSamples)/16000 >= g.MaxTimeSeconds || g.totalPeaks() >= MaxPeaks
}

// GetNextSignature drains available hops into a signature. It returns
// (Signature{}, false) if fewer than 128 unprocessed samples are available.
// Otherwise it processes hops until input is exhausted or an emission
// cutoff is reached, resets the generator's internal state (retaining any
// leftover unprocessed samples), and returns the accumulated signature.
func (g *Generator) GetNextSignature() (Signature, bool) {
	if len(g.pending) < hopSize {
		return Signature{}, false
	}

	processed := 0
	for len(g.pending)-processed >= hopSize && !g.cutoffReached() {
		g.processHop(g.pending[processed : processed+hopSize])
		processed += hopSize
	}

	out := g.sig
	g.pending = g.pending[processed:]
	g.reset()
	return out, true
}

func (g *Generator) processHop(hop []int16) {
	g.sig.NumberSamples += len(hop)
	g.doFFT(hop)
	g.spreadPeaks()
	g.numSpreadFFTsDone++
	if g.numSpreadFFTsDone >= warmupHops {
		g.doPeakRecognition()
	}
}

func (g *Generator) doFFT(hop []int16) {
	for _, v := range hop {
		g.samplesRing.Append(float64(v))
	}

	g.samplesRing.Unwrap(g.excerpt[:])

	for i, c := range hannCoeffs {
		g.windowed[i] = g.excerpt[i] * c
	}

	coeffs := g.fft.Coefficients(nil, g.windowed[:])
	mag := make([]float64, fftBins)
	for i, c := range coeffs {
		re, im := real(c), imag(c)
		m := (re*re + im*im) / float64(int(1)<<17)
		if m < magnitudeFloor {
			m = magnitudeFloor
		}
		mag[i] = m
	}
	g.fftOutputs.Append(mag)
}

func (g *Generator) spreadPeaks() {
	spread := append([]float64(nil), g.fftOutputs.At(g.fftOutputs.Position()-1)...)

	for i := 0; i < spreadBinNeighbors; i++ {
		m := spread[i]
		if spread[i+1] > m {
			m = spread[i+1]
		}
		if spread[i+2] > m {
			m = spread[i+2]
		}
		spread[i] = m
	}

	for _, j := range [...]int{1, 3, 6} {
		prev := g.spreadFFTOutputs.At(g.spreadFFTOutputs.Position() - j)
		for i := range prev {
			if spread[i] > prev[i] {
				prev[i] = spread[i]
			}
		}
	}

	g.spreadFFTOutputs.Append(spread)
}

func (g *Generator) doPeakRecognition() {
	r := g.fftOutputs.At(g.fftOutputs.Position() - peakLookback)
	s := g.spreadFFTOutputs.At(g.spreadFFTOutputs.Position() - spreadLookback)

	for b := 10; b < 1015; b++ {
		if r[b] < 1.0/64.0 || r[b] < s[b-1] {
			continue
		}

		maxNeighbor := 0.0
		for _, off := range neighborOffsets {
			if v := s[b+off]; v > maxNeighbor {
				maxNeighbor = v
			}
		}
		if r[b] <= maxNeighbor {
			continue
		}

		maxOther := maxNeighbor
		for _, off := range otherAdjacentOffsets {
			other := g.spreadFFTOutputs.At(g.spreadFFTOutputs.Position() + off)
			if v := other[b-1]; v > maxOther {
				maxOther = v
			}
		}
		if r[b] <= maxOther {
			continue
		}

		m0 := math.Log(math.Max(1.0/64.0, r[b]))*1477.3 + 6144.0
		mMinus := math.Log(math.Max(1.0/64.0, r[b-1]))*1477.3 + 6144.0
		mPlus := math.Log(math.Max(1.0/64.0, r[b+1]))*1477.3 + 6144.0

		v1 := 2*m0 - mMinus - mPlus
		v2 := (mPlus - mMinus) * 32.0 / v1

		correctedBin := float64(b*64) + v2
		freqHz := correctedBin * (16000.0 / 2.0 / 1024.0 / 64.0)

		band := bandForFrequency(freqHz)
		if band == -1 {
			continue
		}

		peak := FrequencyPeak{
			FFTPassNumber:             g.spreadFFTOutputs.NumWritten() - warmupHops,
			PeakMagnitude:             int(math.Round(m0)),
			CorrectedPeakFrequencyBin: int(math.Round(correctedBin)),
			SampleRateHz:              16000,
		}
		g.sig.PeaksByBand[band] = append(g.sig.PeaksByBand[band], peak)
	}
}
