// Package ring implements the fixed-capacity circular buffers used by the
// fingerprint generator's sample and FFT histories.
package ring

// Numeric is a fixed-capacity circular buffer of float64 samples.
type Numeric struct {
	data     []float64
	position int
	written  int
}

// NewNumeric returns a Numeric ring of the given capacity, zero-filled.
func NewNumeric(capacity int) *Numeric {
	return &Numeric{data: make([]float64, capacity)}
}

// Append writes v at the current position and advances it.
func (r *Numeric) Append(v float64) {
	r.data[r.position] = v
	r.position = (r.position + 1) % len(r.data)
	r.written++
}

// At returns the element at index i, wrapped modulo capacity. Negative i is
// supported: callers pass r.Position()+offset for an offset relative to the
// most recently written slot, matching the Python RingBuffer.__getitem__
// semantics this generator is ported from.
func (r *Numeric) At(i int) float64 {
	n := len(r.data)
	idx := i % n
	if idx < 0 {
		idx += n
	}
	return r.data[idx]
}

// Position returns the next write index.
func (r *Numeric) Position() int { return r.position }

// NumWritten returns the total number of Append calls made.
func (r *Numeric) NumWritten() int { return r.written }

// Len returns the buffer's capacity.
func (r *Numeric) Len() int { return len(r.data) }

// Unwrap returns the buffer contents ordered oldest-first, i.e. the
// concatenation of data[position:] and data[:position].
func (r *Numeric) Unwrap(dst []float64) {
	n := len(r.data)
	k := copy(dst, r.data[r.position:])
	copy(dst[k:], r.data[:r.position])
	_ = n
}

// Spectrum is a fixed-capacity circular buffer of dense magnitude spectra.
// Each slot owns its own backing array: mutating one slot must never alias
// another, which is the entire reason this type exists rather than reusing
// a single default spectrum as the zero value for every slot (see
// internal/shazam's peak-spreading step, which mutates past slots in place).
type Spectrum struct {
	data     [][]float64
	width    int
	position int
	written  int
}

// NewSpectrum returns a Spectrum ring with the given capacity, each slot a
// zeroed vector of the given width.
func NewSpectrum(capacity, width int) *Spectrum {
	data := make([][]float64, capacity)
	for i := range data {
		data[i] = make([]float64, width)
	}
	return &Spectrum{data: data, width: width}
}

// Append stores v at the current position, copying it so the caller's slice
// is never retained, and advances the position.
func (r *Spectrum) Append(v []float64) {
	copy(r.data[r.position], v)
	r.position = (r.position + 1) % len(r.data)
	r.written++
}

// At returns the slot at index i (mod capacity), with the same negative-
// offset semantics as Numeric.At. The returned slice aliases the ring's
// storage: callers that mutate it are mutating that slot in place, which
// the time-domain peak-spreading step in internal/shazam relies on.
func (r *Spectrum) At(i int) []float64 {
	n := len(r.data)
	idx := i % n
	if idx < 0 {
		idx += n
	}
	return r.data[idx]
}

// Position returns the next write index.
func (r *Spectrum) Position() int { return r.position }

// NumWritten returns the total number of Append calls made.
func (r *Spectrum) NumWritten() int { return r.written }

// Len returns the buffer's capacity.
func (r *Spectrum) Len() int { return len(r.data) }
