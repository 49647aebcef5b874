package shazam

// sampleRateCodes maps a sample rate in Hz to its wire-format code, per the
// signature header's shifted-sample-rate field. This core only ever
// produces 16 kHz signatures, but decode must accept the full table to
// round-trip signatures produced elsewhere.
var sampleRateCodes = map[int]uint32{
	8000:  4,
	11025: 5,
	12000: 6,
	22050: 7,
	16000: 8,
	32000: 9,
	44100: 10,
	48000: 11,
}

var sampleRatesByCode = func() map[uint32]int {
	m := make(map[uint32]int, len(sampleRateCodes))
	for hz, code := range sampleRateCodes {
		m[code] = hz
	}
	return m
}()
