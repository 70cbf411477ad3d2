package sequencer

import (
	"math"
	"sync"

	"groovegen/midi"
	"groovegen/rng"
)

// Bounds for lane parameters. Out-of-range values from callers are clamped,
// never rejected: this is a live instrument and silent correction beats
// interruption.
const (
	NumLanes   = 4
	MaxSteps   = 32
	MaxRatchet = 4
	MaxSwing   = 0.75

	// Velocity attenuation per successive ratchet sub-hit.
	ratchetDecay = 0.8
)

// Direction is a modulation lane's playback direction.
type Direction int

const (
	DirForward Direction = iota
	DirReverse
	DirPingPong
)

var directionNames = []string{"Forward", "Reverse", "PingPong"}

func (d Direction) String() string {
	if d >= 0 && int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "Forward"
}

// Modulation lane slots.
const (
	ModPitch = iota
	ModExpression
	ModMorph
	ModDistance
	NumModLanes
)

// TrigCondition gates a step to the x-th bar out of every y: the step may
// only fire when bar % Cycle == Hit-1. The default (1,1) always passes.
type TrigCondition struct {
	Hit   int `json:"hit"`
	Cycle int `json:"cycle"`
}

func (c TrigCondition) SatisfiedAt(bar int64) bool {
	cycle := c.Cycle
	if cycle < 1 {
		cycle = 1
	}
	hit := c.Hit
	if hit < 1 {
		hit = 1
	}
	return bar%int64(cycle) == int64(hit-1)
}

// TriggerLane holds the rhythmic pattern and its per-step trigger
// parameters. All per-step arrays are kept sized to Steps; a desync after a
// resize is corrected lazily on the next access, preserving values by index.
type TriggerLane struct {
	Steps       int             `json:"steps"`
	Hits        int             `json:"hits"`
	Rotation    int             `json:"rotation"`
	Pattern     []bool          `json:"pattern"`
	Probability []float64       `json:"probability"`
	Ratchet     []int           `json:"ratchet"`
	Condition   []TrigCondition `json:"condition"`

	// Ghost marks steps activated by evolution on top of the Euclidean base.
	Ghost []bool `json:"ghost"`
}

func (t *TriggerLane) ensure() {
	if t.Steps < 1 {
		t.Steps = 1
	}
	if t.Steps > MaxSteps {
		t.Steps = MaxSteps
	}
	if t.Hits < 0 {
		t.Hits = 0
	}
	if t.Hits > t.Steps {
		t.Hits = t.Steps
	}
	t.Pattern = resizeBools(t.Pattern, t.Steps, false)
	t.Probability = resizeFloats(t.Probability, t.Steps, 1.0)
	t.Ratchet = resizeInts(t.Ratchet, t.Steps, 1)
	t.Ghost = resizeBools(t.Ghost, t.Steps, false)
	if len(t.Condition) != t.Steps {
		next := make([]TrigCondition, t.Steps)
		for i := range next {
			next[i] = TrigCondition{Hit: 1, Cycle: 1}
		}
		copy(next, t.Condition)
		t.Condition = next
	}
}

// regenerate rebuilds the pattern from the Euclidean base plus ghost
// overrides.
func (t *TriggerLane) regenerate() {
	t.ensure()
	base := Euclid(t.Steps, t.Hits, t.Rotation)
	for i := 0; i < t.Steps; i++ {
		t.Pattern[i] = base[i] || t.Ghost[i]
	}
}

// SetSteps resizes the lane, preserving per-step values by index.
func (t *TriggerLane) SetSteps(n int) {
	t.Steps = clampInt(n, 1, MaxSteps)
	t.regenerate()
}

func (t *TriggerLane) SetHits(n int) {
	t.ensure()
	t.Hits = clampInt(n, 0, t.Steps)
	t.regenerate()
}

func (t *TriggerLane) SetRotation(r int) {
	t.ensure()
	t.Rotation = ((r % t.Steps) + t.Steps) % t.Steps
	t.regenerate()
}

// activeSteps returns the indices where the pattern is on.
func (t *TriggerLane) activeSteps() []int {
	t.ensure()
	var out []int
	for i := 0; i < t.Steps; i++ {
		if t.Pattern[i] {
			out = append(out, i)
		}
	}
	return out
}

// ModLane is one of the four modulation lanes (pitch, expression, morph,
// distance). It advances on a hit-count basis, independent of the trigger
// lane's step count, so lanes of different lengths drift in phase against
// each other (polymeter).
type ModLane struct {
	Steps     int       `json:"steps"`
	Direction Direction `json:"direction"`
	Enabled   bool      `json:"enabled"`
	Values    []float64 `json:"values"`
}

func (l *ModLane) ensure() {
	if l.Steps < 1 {
		l.Steps = 1
	}
	if l.Steps > MaxSteps {
		l.Steps = MaxSteps
	}
	l.Values = resizeFloats(l.Values, l.Steps, 0)
}

// IndexAt maps a global hit count to the lane's active index, remapped by
// direction. PingPong bounces over a virtual cycle of 2*steps-2.
func (l *ModLane) IndexAt(hitCount int64) int {
	l.ensure()
	n := l.Steps
	if n == 1 {
		return 0
	}
	switch l.Direction {
	case DirReverse:
		return n - 1 - int(hitCount%int64(n))
	case DirPingPong:
		cycle := int64(2*n - 2)
		pos := int(hitCount % cycle)
		if pos >= n {
			pos = int(cycle) - pos
		}
		return pos
	default:
		return int(hitCount % int64(n))
	}
}

func (l *ModLane) ValueAt(hitCount int64) float64 {
	l.ensure()
	return l.Values[l.IndexAt(hitCount)]
}

// Lane is one of the group's four independent sequencers: a trigger lane,
// four modulation lanes, a clock division and swing, and an evolution
// config with its home snapshot.
type Lane struct {
	Trigger  TriggerLane          `json:"trigger"`
	Mod      [NumModLanes]ModLane `json:"mod"`
	Voices   midi.VoiceMask       `json:"voices"`
	Division Division             `json:"division"`
	Swing    float64              `json:"swing"`
	Muted    bool                 `json:"muted"`
	Solo     bool                 `json:"solo"`
	Evolve   EvolveConfig         `json:"evolve"`
	Home     *HomeSnapshot        `json:"home,omitempty"`

	// Runtime. Each lane is advanced by exactly one scheduling context;
	// mu serializes that context against live edits from the UI.
	mu         sync.Mutex
	stepIndex  int
	totalSteps int64
	hitCount   int64
	bars       int64
	trig       *rng.Stream
	evo        *rng.Stream
}

func newLane() *Lane {
	l := &Lane{Division: DivSixteenth}
	l.Trigger.Steps = 16
	l.Trigger.Hits = 4
	l.Trigger.regenerate()
	l.Evolve = defaultEvolveConfig()
	for k := range l.Mod {
		m := &l.Mod[k]
		m.Steps = 16
		m.Enabled = true
		m.ensure()
	}
	for i := range l.Mod[ModExpression].Values {
		l.Mod[ModExpression].Values[i] = 0.9
	}
	for i := range l.Mod[ModMorph].Values {
		l.Mod[ModMorph].Values[i] = 0.5
	}
	return l
}

// bind attaches the lane's trigger and evolution RNG substreams.
func (l *Lane) bind(trig, evo *rng.Stream) {
	l.mu.Lock()
	l.trig = trig
	l.evo = evo
	l.mu.Unlock()
}

// Edit runs fn with exclusive access to the lane. User edits override any
// field at any time and take effect on the next tick.
func (l *Lane) Edit(fn func(*Lane)) {
	l.mu.Lock()
	fn(l)
	l.Trigger.ensure()
	l.mu.Unlock()
}

func (l *Lane) SetSwing(v float64) {
	l.mu.Lock()
	l.Swing = clampFloat(v, 0, MaxSwing)
	l.mu.Unlock()
}

// SwingAmount returns the current swing in [0, MaxSwing].
func (l *Lane) SwingAmount() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return clampFloat(l.Swing, 0, MaxSwing)
}

// Locked accessors for fields the scheduler and UI read while Edit may be
// writing them concurrently.

func (l *Lane) IsMuted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Muted
}

func (l *Lane) IsSolo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Solo
}

func (l *Lane) StepDivision() Division {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Division
}

func (l *Lane) EvolveEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Evolve.Enabled
}

func (l *Lane) StepIndex() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stepIndex
}

func (l *Lane) Bars() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bars
}

func (l *Lane) TotalSteps() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalSteps
}

func (l *Lane) HitCount() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hitCount
}

// Advance evaluates the lane's current step and moves the playhead. It
// returns the step's trigger events and whether the step index wrapped to
// the start of a new bar.
func (l *Lane) Advance() (events []midi.TriggerEvent, wrapped bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	events = l.evalStep()
	l.stepIndex++
	l.totalSteps++
	if l.stepIndex >= l.Trigger.Steps {
		l.stepIndex = 0
		l.bars++
		wrapped = true
	}
	return events, wrapped
}

// evalStep decides whether the current step fires and expands it into
// ratchet sub-hits. Caller holds l.mu.
func (l *Lane) evalStep() []midi.TriggerEvent {
	t := &l.Trigger
	t.ensure()
	if l.stepIndex >= t.Steps {
		l.stepIndex = 0
	}
	step := l.stepIndex

	if !t.Pattern[step] {
		return nil
	}
	if l.trig == nil {
		// Unbound lanes (not owned by a group) still behave deterministically.
		l.trig = rng.Seed("unbound-trig")
		l.evo = rng.Seed("unbound-evolve")
	}
	if !l.trig.Chance(t.Probability[step]) {
		return nil
	}
	if !t.Condition[step].SatisfiedAt(l.bars) {
		return nil
	}

	ratchets := clampInt(t.Ratchet[step], 1, MaxRatchet)

	pitch := 0
	if l.Mod[ModPitch].Enabled {
		pitch = int(math.Round(l.Mod[ModPitch].ValueAt(l.hitCount)))
	}
	velocity := 1.0
	if l.Mod[ModExpression].Enabled {
		velocity = l.Mod[ModExpression].ValueAt(l.hitCount)
	}
	var morph, distance float64
	if l.Mod[ModMorph].Enabled {
		morph = l.Mod[ModMorph].ValueAt(l.hitCount)
	}
	if l.Mod[ModDistance].Enabled {
		distance = l.Mod[ModDistance].ValueAt(l.hitCount)
	}
	l.hitCount++

	events := make([]midi.TriggerEvent, 0, ratchets)
	for k := 0; k < ratchets; k++ {
		events = append(events, midi.TriggerEvent{
			Voices:       l.Voices,
			Velocity:     velocity,
			PitchOffset:  pitch,
			Morph:        morph,
			Distance:     distance,
			RatchetIndex: k,
			RatchetCount: ratchets,
			StepOffset:   float64(k) / float64(ratchets),
		})
		velocity *= ratchetDecay
	}
	return events
}

// Slice helpers: resize preserving values by index, pad with a default.

func resizeBools(v []bool, n int, def bool) []bool {
	if len(v) == n {
		return v
	}
	next := make([]bool, n)
	for i := range next {
		next[i] = def
	}
	copy(next, v)
	return next
}

func resizeFloats(v []float64, n int, def float64) []float64 {
	if len(v) == n {
		return v
	}
	next := make([]float64, n)
	for i := range next {
		next[i] = def
	}
	copy(next, v)
	return next
}

func resizeInts(v []int, n int, def int) []int {
	if len(v) == n {
		return v
	}
	next := make([]int, n)
	for i := range next {
		next[i] = def
	}
	copy(next, v)
	return next
}

func copyBools(v []bool) []bool {
	out := make([]bool, len(v))
	copy(out, v)
	return out
}

func copyFloats(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

func copyInts(v []int) []int {
	out := make([]int, len(v))
	copy(out, v)
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
