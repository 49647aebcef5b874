package shazam

// FrequencyPeak is a single time-frequency peak detected by the generator.
type FrequencyPeak struct {
	FFTPassNumber             int
	PeakMagnitude             int
	CorrectedPeakFrequencyBin int
	SampleRateHz              int
}
