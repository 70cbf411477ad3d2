// Package rng provides deterministic seeded random streams.
//
// Every probabilistic decision in the engine draws from a Stream keyed by a
// seed string. The same seed string always yields the same infinite draw
// sequence, and streams derived for different purposes are independent: one
// stream consuming faster never shifts another stream's sequence. There is
// no fallback to system randomness anywhere.
package rng

// Stream is a deterministic pseudo-random generator with 32 bits of state.
type Stream struct {
	state uint32
}

// Seed creates a stream from arbitrary seed material.
func Seed(material string) *Stream {
	return &Stream{state: hashString(material)}
}

// Derive creates an independent substream for a named purpose. Two purposes
// on the same base material produce uncorrelated sequences.
func Derive(base, purpose string) *Stream {
	return Seed(base + "|" + purpose)
}

// hashString folds a string to 32 bits with a rolling multiply-xor-rotate
// accumulator. FNV-style constants, avalanche via rotation.
func hashString(s string) uint32 {
	h := uint32(0x811c9dc5)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 0x01000193
		h = h<<13 | h>>19
	}
	return h
}

// Next advances the state with an add-xor-multiply-xor mix and returns a
// float in [0, 1).
func (s *Stream) Next() float64 {
	s.state += 0x9e3779b9
	z := s.state
	z ^= z >> 16
	z *= 0x21f0aaad
	z ^= z >> 15
	z *= 0x735a2d97
	z ^= z >> 15
	return float64(z) / (1 << 32)
}

// Chance returns true with probability p.
func (s *Stream) Chance(p float64) bool {
	return s.Next() < p
}

// IntRange returns an integer in [min, max] inclusive.
func (s *Stream) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + int(s.Next()*float64(max-min+1))
}

// FloatRange returns a float in [min, max).
func (s *Stream) FloatRange(min, max float64) float64 {
	return min + s.Next()*(max-min)
}

// Pick returns an index chosen with the given relative weights, or -1 if no
// weight is positive.
func (s *Stream) Pick(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}
	draw := s.Next() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		draw -= w
		if draw < 0 {
			return i
		}
	}
	return len(weights) - 1
}

// Shuffle performs a Fisher-Yates shuffle over n elements via swap.
func (s *Stream) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := s.IntRange(0, i)
		swap(i, j)
	}
}
