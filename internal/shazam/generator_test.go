package shazam

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func totalPeakCount(sig Signature) int {
	n := 0
	for _, peaks := range sig.PeaksByBand {
		n += len(peaks)
	}
	return n
}

func TestGeneratorTooFewSamplesReturnsNoSignature(t *testing.T) {
	g := NewGenerator()
	g.Feed(make([]int16, 127))
	_, ok := g.GetNextSignature()
	assert.False(t, ok)
}

func TestGeneratorOneHopHasNoPeaks(t *testing.T) {
	g := NewGenerator()
	g.Feed(make([]int16, 128))
	sig, ok := g.GetNextSignature()
	require.True(t, ok)
	assert.Equal(t, 128, sig.NumberSamples)
	assert.Equal(t, 0, totalPeakCount(sig))
}

func TestGeneratorSilenceSixteenThousandSamples(t *testing.T) {
	g := NewGenerator()
	g.MaxTimeSeconds = 100 // only input exhaustion ends this drain
	g.Feed(make([]int16, 16000))
	sig, ok := g.GetNextSignature()
	require.True(t, ok)
	assert.Equal(t, 16000, sig.NumberSamples) // 125 hops of 128 samples
	assert.Equal(t, 0, totalPeakCount(sig))
}

func TestGeneratorSilenceThroughWarmupHasNoPeaks(t *testing.T) {
	g := NewGenerator()
	g.MaxTimeSeconds = 100
	g.Feed(make([]int16, 46*128))
	sig, ok := g.GetNextSignature()
	require.True(t, ok)
	assert.Equal(t, 0, totalPeakCount(sig))
}

func TestGeneratorNumberSamplesIsMultipleOfHopSize(t *testing.T) {
	g := NewGenerator()
	g.MaxTimeSeconds = 100
	g.Feed(make([]int16, 5000))
	sig, ok := g.GetNextSignature()
	require.True(t, ok)
	assert.Zero(t, sig.NumberSamples%128)
}

func TestGeneratorToneProducesPeakInExpectedBand(t *testing.T) {
	g := NewGenerator()
	const seconds = 2
	const n = 16000 * seconds
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(0.5 * 32767 * math.Sin(2*math.Pi*1000*float64(i)/16000))
	}
	g.MaxTimeSeconds = 100
	g.Feed(samples)

	found := false
	for {
		sig, ok := g.GetNextSignature()
		if !ok {
			break
		}
		for _, peak := range sig.PeaksByBand[Band520to1450] {
			freq := float64(peak.CorrectedPeakFrequencyBin) * (16000.0 / 2.0 / 1024.0 / 64.0)
			if math.Abs(freq-1000) <= 10 {
				found = true
			}
		}
	}
	assert.True(t, found, "expected at least one peak near 1000Hz in band [520,1450)")
}

func TestGeneratorSilenceStaysQuietAcrossSpreadHistoryWraparound(t *testing.T) {
	// fftHistory is 256 slots; push well past two full wraps to catch any
	// accumulation bug in spreadPeaks' cross-pass history merge.
	g := NewGenerator()
	g.MaxTimeSeconds = 100
	g.Feed(make([]int16, 700*128))
	sig, ok := g.GetNextSignature()
	require.True(t, ok)
	assert.Equal(t, 0, totalPeakCount(sig), "pure silence must never produce peaks, however long the ring has been running")
}

func TestGeneratorResetsStateBetweenSignatures(t *testing.T) {
	g := NewGenerator()
	g.MaxTimeSeconds = 100
	g.Feed(make([]int16, 128))
	sig1, ok := g.GetNextSignature()
	require.True(t, ok)

	g.Feed(make([]int16, 256))
	sig2, ok := g.GetNextSignature()
	require.True(t, ok)

	assert.Equal(t, 128, sig1.NumberSamples)
	assert.Equal(t, 256, sig2.NumberSamples)
}

func TestGeneratorDrainStopsAtACutoff(t *testing.T) {
	g := NewGenerator()
	g.MaxTimeSeconds = 3.1

	const seconds = 10
	const n = 16000 * seconds
	samples := make([]int16, n)
	for i := range samples {
		v := 0.0
		for _, f := range []float64{300, 700, 1800, 4000} {
			v += math.Sin(2 * math.Pi * f * float64(i) / 16000)
		}
		samples[i] = int16(0.2 * 32767 * v)
	}
	g.Feed(samples)

	sig, ok := g.GetNextSignature()
	require.True(t, ok)
	total := totalPeakCount(sig)
	timeOK := float64(sig.NumberSamples)/16000 <= g.MaxTimeSeconds+128.0/16000
	peaksOK := total <= MaxPeaks+1
	assert.True(t, timeOK || peaksOK)
}
