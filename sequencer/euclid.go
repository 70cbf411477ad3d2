package sequencer

import "sync"

// Euclidean patterns are pure functions of (steps, hits, rotation); results
// are memoized since the UI and evolution regenerate them constantly.
var (
	euclidMu    sync.RWMutex
	euclidCache = make(map[[3]int][]bool)
)

// Euclid distributes hits pulses as evenly as possible across steps slots,
// then applies a cyclic left-rotation. Pulse i lands at slot
// floor(i*steps/hits). hits is clamped to [0, steps], steps to [1, MaxSteps],
// rotation is taken mod steps.
func Euclid(steps, hits, rotation int) []bool {
	if steps < 1 {
		steps = 1
	}
	if steps > MaxSteps {
		steps = MaxSteps
	}
	if hits < 0 {
		hits = 0
	}
	if hits > steps {
		hits = steps
	}
	rotation = ((rotation % steps) + steps) % steps

	key := [3]int{steps, hits, rotation}
	euclidMu.RLock()
	if cached, ok := euclidCache[key]; ok {
		euclidMu.RUnlock()
		out := make([]bool, steps)
		copy(out, cached)
		return out
	}
	euclidMu.RUnlock()

	base := make([]bool, steps)
	for i := 0; i < hits; i++ {
		base[i*steps/hits] = true
	}

	pattern := make([]bool, steps)
	for i := 0; i < steps; i++ {
		pattern[i] = base[(i+rotation)%steps]
	}

	euclidMu.Lock()
	euclidCache[key] = pattern
	euclidMu.Unlock()

	out := make([]bool, steps)
	copy(out, pattern)
	return out
}
