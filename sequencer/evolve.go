package sequencer

import "groovegen/rng"

// Evolution method identifiers. Each enabled method gets one independent
// probabilistic trial per qualifying bar boundary, succeeding with
// probability baseProb(method) * intensity. No method runs more than once
// per cycle.
type Method int

const (
	RotateDrift Method = iota
	VelocityBreath
	SwingDrift
	ProbabilityDrift
	MorphDrift
	GhostNotes
	RatchetSpray
	HitCountDrift
	PitchWalk
	NumMethods
)

var methodNames = []string{
	"RotateDrift", "VelocityBreath", "SwingDrift", "ProbabilityDrift",
	"MorphDrift", "GhostNotes", "RatchetSpray", "HitCountDrift", "PitchWalk",
}

func (m Method) String() string {
	if m >= 0 && int(m) < len(methodNames) {
		return methodNames[m]
	}
	return "?"
}

// Base trial probabilities. The walk-style drifts are always sampled when
// enabled, so their base is 1 and intensity alone scales them.
var methodBaseProb = [NumMethods]float64{
	RotateDrift:      0.25,
	VelocityBreath:   1.0,
	SwingDrift:       1.0,
	ProbabilityDrift: 1.0,
	MorphDrift:       1.0,
	GhostNotes:       0.30,
	RatchetSpray:     0.20,
	HitCountDrift:    0.15,
	PitchWalk:        0.25,
}

const (
	gravityBase   = 0.15
	probFloor     = 0.30
	velocityLo    = 0.2
	pitchMaxDrift = 3
)

// EvolveConfig controls per-lane generative evolution.
type EvolveConfig struct {
	Enabled   bool             `json:"enabled"`
	EveryBars int              `json:"everyBars"`
	Intensity float64          `json:"intensity"`
	Methods   [NumMethods]bool `json:"methods"`
}

func defaultEvolveConfig() EvolveConfig {
	c := EvolveConfig{EveryBars: 1}
	c.SetIntensity(0.5)
	c.Enabled = false
	return c
}

// SetIntensity clamps to [0,1] and re-derives the method flags from the
// intensity tiers. Individual flags can be overridden afterwards; they
// stick until intensity next changes.
func (c *EvolveConfig) SetIntensity(v float64) {
	c.Intensity = clampFloat(v, 0, 1)
	c.Methods = MethodsForIntensity(c.Intensity)
}

// SetEveryBars clamps the evolution interval to at least one bar.
func (c *EvolveConfig) SetEveryBars(n int) {
	if n < 1 {
		n = 1
	}
	c.EveryBars = n
}

// MethodsForIntensity derives the auto method tiers: the walk drifts come
// in as soon as intensity is non-zero, the structural mutations in stages.
func MethodsForIntensity(v float64) [NumMethods]bool {
	var m [NumMethods]bool
	if v <= 0 {
		return m
	}
	m[VelocityBreath] = true
	m[SwingDrift] = true
	m[ProbabilityDrift] = true
	m[MorphDrift] = true
	if v >= 0.3 {
		m[RotateDrift] = true
		m[GhostNotes] = true
	}
	if v >= 0.5 {
		m[RatchetSpray] = true
		m[PitchWalk] = true
	}
	if v >= 0.7 {
		m[HitCountDrift] = true
	}
	return m
}

// HomeSnapshot is the immutable copy of a lane's mutable state captured
// when evolution is armed. Gravity pulls the live state back toward it;
// Reset restores it outright.
type HomeSnapshot struct {
	Rotation     int       `json:"rotation"`
	Hits         int       `json:"hits"`
	Pattern      []bool    `json:"pattern"`
	Probability  []float64 `json:"probability"`
	Ratchet      []int     `json:"ratchet"`
	Velocities   []float64 `json:"velocities"`
	MorphValues  []float64 `json:"morphValues"`
	Swing        float64   `json:"swing"`
	PitchOffsets []float64 `json:"pitchOffsets"`
}

// SnapshotHome captures the lane's current state as the new home.
func (l *Lane) SnapshotHome() {
	l.mu.Lock()
	l.snapshotHomeLocked()
	l.mu.Unlock()
}

func (l *Lane) snapshotHomeLocked() {
	t := &l.Trigger
	t.ensure()
	l.Mod[ModExpression].ensure()
	l.Mod[ModMorph].ensure()
	l.Mod[ModPitch].ensure()
	l.Home = &HomeSnapshot{
		Rotation:     t.Rotation,
		Hits:         t.Hits,
		Pattern:      copyBools(t.Pattern),
		Probability:  copyFloats(t.Probability),
		Ratchet:      copyInts(t.Ratchet),
		Velocities:   copyFloats(l.Mod[ModExpression].Values),
		MorphValues:  copyFloats(l.Mod[ModMorph].Values),
		Swing:        l.Swing,
		PitchOffsets: copyFloats(l.Mod[ModPitch].Values),
	}
}

// SetEvolveEnabled arms or disarms evolution. Arming (including re-arming
// after a disable) captures a fresh home snapshot; disabling keeps the
// snapshot so gravity state survives a momentary toggle elsewhere.
func (l *Lane) SetEvolveEnabled(on bool) {
	l.mu.Lock()
	if on && !l.Evolve.Enabled {
		l.snapshotHomeLocked()
	}
	l.Evolve.Enabled = on
	l.mu.Unlock()
}

// Reset instantly restores all mutable fields from the home snapshot and
// zeroes the lane's counters so the next qualifying boundary evolves from
// a fresh base. Calling it twice is the same as calling it once.
func (l *Lane) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if h := l.Home; h != nil {
		t := &l.Trigger
		t.Steps = len(h.Pattern)
		t.Rotation = h.Rotation
		t.Hits = h.Hits
		t.Pattern = copyBools(h.Pattern)
		t.Probability = copyFloats(h.Probability)
		t.Ratchet = copyInts(h.Ratchet)
		t.Ghost = make([]bool, t.Steps)
		t.ensure()

		l.Mod[ModExpression].Values = copyFloats(h.Velocities)
		l.Mod[ModExpression].Steps = len(h.Velocities)
		l.Mod[ModMorph].Values = copyFloats(h.MorphValues)
		l.Mod[ModMorph].Steps = len(h.MorphValues)
		l.Mod[ModPitch].Values = copyFloats(h.PitchOffsets)
		l.Mod[ModPitch].Steps = len(h.PitchOffsets)
		l.Swing = h.Swing
	}

	l.stepIndex = 0
	l.totalSteps = 0
	l.hitCount = 0
	l.bars = 0
}

// evolveDue reports whether the bar that just completed qualifies for an
// evolution pass. Caller is the group, on a step-index wrap.
func (l *Lane) evolveDue() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.Evolve.Enabled {
		return false
	}
	every := l.Evolve.EveryBars
	if every < 1 {
		every = 1
	}
	return l.bars%int64(every) == 0
}

// EvolveBar runs one evolution cycle: one trial per enabled method, then a
// gravity trial. Reports whether anything mutated.
func (l *Lane) EvolveBar() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.evolveBarLocked()
}

func (l *Lane) evolveBarLocked() bool {
	if l.evo == nil {
		l.evo = rng.Seed("unbound-evolve")
	}
	if l.Home == nil {
		l.snapshotHomeLocked()
	}
	r := l.evo
	cfg := &l.Evolve
	intensity := clampFloat(cfg.Intensity, 0, 1)

	mutated := false
	for m := Method(0); m < NumMethods; m++ {
		if !cfg.Methods[m] {
			continue
		}
		if !r.Chance(methodBaseProb[m] * intensity) {
			continue
		}
		if l.applyMethod(m, r) {
			mutated = true
		}
	}

	// Gravity scales inversely with intensity: more intensity, less pull,
	// more sustained drift.
	if r.Chance(gravityBase * (1 - intensity)) {
		if l.applyGravity(r) {
			mutated = true
		}
	}
	return mutated
}

func (l *Lane) applyMethod(m Method, r *rng.Stream) bool {
	t := &l.Trigger
	t.ensure()

	switch m {
	case RotateDrift:
		delta := 1
		if r.Chance(0.5) {
			delta = -1
		}
		t.Rotation = ((t.Rotation+delta)%t.Steps + t.Steps) % t.Steps
		t.regenerate()
		return true

	case VelocityBreath:
		lane := &l.Mod[ModExpression]
		lane.ensure()
		for i := range lane.Values {
			lane.Values[i] = clampFloat(lane.Values[i]+r.FloatRange(-0.08, 0.08), velocityLo, 1.0)
		}
		return true

	case SwingDrift:
		l.Swing = clampFloat(l.Swing+r.FloatRange(-0.03, 0.03), 0, MaxSwing)
		return true

	case ProbabilityDrift:
		changed := false
		for i := 0; i < t.Steps; i++ {
			if t.Pattern[i] && !t.Ghost[i] {
				t.Probability[i] = clampFloat(t.Probability[i]+r.FloatRange(-0.08, 0.08), probFloor, 1.0)
				changed = true
			}
		}
		return changed

	case MorphDrift:
		lane := &l.Mod[ModMorph]
		lane.ensure()
		for i := range lane.Values {
			lane.Values[i] = clampFloat(lane.Values[i]+r.FloatRange(-0.05, 0.05), 0, 1)
		}
		return true

	case GhostNotes:
		var inactive []int
		for i := 0; i < t.Steps; i++ {
			if !t.Pattern[i] {
				inactive = append(inactive, i)
			}
		}
		if len(inactive) == 0 {
			return false
		}
		count := r.IntRange(1, 2)
		if count > len(inactive) {
			count = len(inactive)
		}
		r.Shuffle(len(inactive), func(i, j int) {
			inactive[i], inactive[j] = inactive[j], inactive[i]
		})
		for k := 0; k < count; k++ {
			i := inactive[k]
			t.Ghost[i] = true
			t.Pattern[i] = true
			t.Probability[i] = r.FloatRange(0.15, 0.35)
		}
		return true

	case RatchetSpray:
		active := t.activeSteps()
		if len(active) == 0 {
			return false
		}
		i := active[r.IntRange(0, len(active)-1)]
		if t.Ratchet[i] == 1 {
			t.Ratchet[i] = 2
		} else {
			t.Ratchet[i] = 1
		}
		return true

	case HitCountDrift:
		if t.Steps < 2 {
			return false
		}
		delta := 1
		if r.Chance(0.5) {
			delta = -1
		}
		hits := clampInt(t.Hits+delta, 1, t.Steps-1)
		if hits == t.Hits {
			return false
		}
		t.Hits = hits
		// A new hit count invalidates ghost overrides; their probability
		// slots go back to home.
		for i := range t.Ghost {
			if t.Ghost[i] {
				t.Ghost[i] = false
				t.Probability[i] = l.homeProbAt(i)
			}
		}
		t.regenerate()
		return true

	case PitchWalk:
		lane := &l.Mod[ModPitch]
		lane.ensure()
		i := r.IntRange(0, lane.Steps-1)
		delta := 1.0
		if r.Chance(0.5) {
			delta = -1
		}
		home := l.homePitchAt(i)
		v := clampFloat(lane.Values[i]+delta, home-pitchMaxDrift, home+pitchMaxDrift)
		if v == lane.Values[i] {
			return false
		}
		lane.Values[i] = v
		return true
	}
	return false
}

// applyGravity pulls exactly one of rotation, swing, the probability set or
// the velocity set a fixed fraction back toward home.
func (l *Lane) applyGravity(r *rng.Stream) bool {
	h := l.Home
	if h == nil {
		return false
	}
	switch r.IntRange(0, 3) {
	case 0:
		t := &l.Trigger
		t.ensure()
		// Rotation is cyclic; step back along the shorter direction.
		diff := ((t.Rotation-h.Rotation)%t.Steps + t.Steps) % t.Steps
		if diff == 0 {
			return false
		}
		if 2*diff > t.Steps {
			t.Rotation = (t.Rotation + 1) % t.Steps
		} else {
			t.Rotation = (t.Rotation - 1 + t.Steps) % t.Steps
		}
		t.regenerate()
	case 1:
		if l.Swing == h.Swing {
			return false
		}
		l.Swing += 0.3 * (h.Swing - l.Swing)
	case 2:
		t := &l.Trigger
		t.ensure()
		for i := range t.Probability {
			if i < len(h.Probability) {
				t.Probability[i] += 0.2 * (h.Probability[i] - t.Probability[i])
			}
		}
	case 3:
		lane := &l.Mod[ModExpression]
		lane.ensure()
		for i := range lane.Values {
			if i < len(h.Velocities) {
				lane.Values[i] += 0.2 * (h.Velocities[i] - lane.Values[i])
			}
		}
	}
	return true
}

func (l *Lane) homeProbAt(i int) float64 {
	if l.Home != nil && i < len(l.Home.Probability) {
		return l.Home.Probability[i]
	}
	return 1.0
}

func (l *Lane) homePitchAt(i int) float64 {
	if l.Home != nil && i < len(l.Home.PitchOffsets) {
		return l.Home.PitchOffsets[i]
	}
	return 0
}
