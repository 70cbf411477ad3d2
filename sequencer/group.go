package sequencer

import (
	"fmt"
	"sync"
	"time"

	"groovegen/debug"
	"groovegen/midi"
	"groovegen/rng"
)

// Tempo range in BPM.
const (
	MinTempo = 20
	MaxTempo = 300
)

// Group is four lanes sharing a seed and a tempo. All randomness flows
// through substreams derived from Seed, so the same seed always produces
// the same performance.
type Group struct {
	Lanes [NumLanes]*Lane `json:"lanes"`
	Tempo float64         `json:"tempo"`
	Seed  string          `json:"seed"`

	mu         sync.Mutex
	playing    bool
	onChange   func(lane int)
	UpdateChan chan struct{} `json:"-"`
}

// NewGroup builds a group with the default kit layout: kick, snare, hats,
// and a 12-step perc lane that polyrhythms against the others.
func NewGroup(seed string) *Group {
	g := &Group{
		Tempo:      120,
		Seed:       seed,
		UpdateChan: make(chan struct{}, 16),
	}
	for i := range g.Lanes {
		g.Lanes[i] = newLane()
	}

	kick := g.Lanes[0]
	kick.Voices.Set(midi.VoiceKick)

	snare := g.Lanes[1]
	snare.Voices.Set(midi.VoiceSnare)
	snare.Trigger.Hits = 2
	// Backbeat: rotate the 2-in-16 pulses onto steps 4 and 12.
	snare.Trigger.Rotation = 12
	snare.Trigger.regenerate()

	hats := g.Lanes[2]
	hats.Voices.Set(midi.VoiceClosedHat)
	hats.Trigger.Hits = 8
	hats.Trigger.regenerate()

	perc := g.Lanes[3]
	perc.Voices.Set(midi.VoicePerc)
	perc.Trigger.Steps = 12
	perc.Trigger.Hits = 5
	perc.Trigger.regenerate()

	g.bindStreams()
	return g
}

// bindStreams derives each lane's trigger and evolution substreams from
// the group seed. Separate purposes keep a draw on one lane from
// perturbing any other.
func (g *Group) bindStreams() {
	for i, l := range g.Lanes {
		l.bind(
			rng.Derive(g.Seed, fmt.Sprintf("trig-seq%d", i)),
			rng.Derive(g.Seed, fmt.Sprintf("drumEvolve-seq%d", i)),
		)
	}
}

// Reseed replaces the group seed and rebinds all lane streams.
func (g *Group) Reseed(seed string) {
	g.mu.Lock()
	g.Seed = seed
	g.mu.Unlock()
	g.bindStreams()
}

// Play starts playback. Lanes with evolution armed but no home yet get
// one captured here, so a Reset always has a base to return to.
func (g *Group) Play() {
	g.mu.Lock()
	g.playing = true
	g.mu.Unlock()
	for _, l := range g.Lanes {
		l.mu.Lock()
		if l.Evolve.Enabled && l.Home == nil {
			l.snapshotHomeLocked()
		}
		l.mu.Unlock()
	}
}

// Stop freezes playback in place. Playheads, bar counters and home
// snapshots all survive, so Play resumes rather than restarts.
func (g *Group) Stop() {
	g.mu.Lock()
	g.playing = false
	g.mu.Unlock()
}

func (g *Group) Playing() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playing
}

// Tick advances lane i by one step and returns its audible events. Muted
// and un-soloed lanes still advance (their playheads and evolution keep
// moving) but return nothing.
func (g *Group) Tick(i int) []midi.TriggerEvent {
	if i < 0 || i >= NumLanes {
		return nil
	}
	if !g.Playing() {
		return nil
	}
	lane := g.Lanes[i]

	events, wrapped := lane.Advance()
	if wrapped && lane.evolveDue() {
		if lane.EvolveBar() {
			debug.Log("evolve", "lane %d mutated at bar %d", i, lane.Bars())
			g.laneChanged(i)
		}
	}

	if !g.audible(i) {
		return nil
	}
	for k := range events {
		events[k].Lane = i
	}
	return events
}

// audible applies mute and solo: any solo anywhere silences every
// un-soloed lane, and mute always silences its own.
func (g *Group) audible(i int) bool {
	if g.Lanes[i].IsMuted() {
		return false
	}
	anySolo := false
	for _, l := range g.Lanes {
		if l.IsSolo() {
			anySolo = true
			break
		}
	}
	return !anySolo || g.Lanes[i].IsSolo()
}

func (g *Group) SetTempo(bpm float64) {
	g.mu.Lock()
	g.Tempo = clampFloat(bpm, MinTempo, MaxTempo)
	g.mu.Unlock()
	g.notify()
}

func (g *Group) TempoBPM() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.Tempo
}

// StepDuration converts the current tempo and a division into wall time
// per step.
func (g *Group) StepDuration(d Division) time.Duration {
	bpm := g.TempoBPM()
	if bpm <= 0 {
		bpm = 120
	}
	beat := float64(time.Minute) / bpm
	return time.Duration(beat * d.BeatFraction())
}

// SetOnChange registers a hook invoked whenever a lane mutates through
// evolution. Lane index is passed; the hook must not call back into the
// group.
func (g *Group) SetOnChange(fn func(lane int)) {
	g.mu.Lock()
	g.onChange = fn
	g.mu.Unlock()
}

// ResetLane restores lane i from its home snapshot.
func (g *Group) ResetLane(i int) {
	if i < 0 || i >= NumLanes {
		return
	}
	g.Lanes[i].Reset()
	g.laneChanged(i)
}

// SnapshotHome recaptures lane i's current state as its home.
func (g *Group) SnapshotHome(i int) {
	if i < 0 || i >= NumLanes {
		return
	}
	g.Lanes[i].SnapshotHome()
	g.laneChanged(i)
}

// Restore replaces this group's musical state with src's, as loaded from
// a preset. Runtime state resets: streams rebind from the restored seed
// and playback stops.
func (g *Group) Restore(src *Group) {
	g.mu.Lock()
	g.Tempo = clampFloat(src.Tempo, MinTempo, MaxTempo)
	g.Seed = src.Seed
	g.playing = false
	g.mu.Unlock()

	for i := range g.Lanes {
		if src.Lanes[i] == nil {
			g.Lanes[i] = newLane()
			continue
		}
		l := src.Lanes[i]
		l.Trigger.ensure()
		for k := range l.Mod {
			l.Mod[k].ensure()
		}
		g.Lanes[i] = l
	}
	g.bindStreams()
	g.notify()
}

func (g *Group) laneChanged(i int) {
	g.mu.Lock()
	fn := g.onChange
	g.mu.Unlock()
	if fn != nil {
		fn(i)
	}
	g.notify()
}

// notify pokes the update channel without ever blocking the clock.
func (g *Group) notify() {
	if g.UpdateChan == nil {
		return
	}
	select {
	case g.UpdateChan <- struct{}{}:
	default:
	}
}
