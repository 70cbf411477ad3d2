package sequencer

import (
	"sync"
	"time"

	"groovegen/debug"
	"groovegen/midi"
)

// Division is a lane's step rate relative to the quarter-note beat.
type Division int

const (
	DivQuarter Division = iota
	DivEighth
	DivSixteenth
	DivEighthTriplet
	DivSixteenthTriplet
)

var divisionNames = []string{"1/4", "1/8", "1/16", "1/8T", "1/16T"}

func (d Division) String() string {
	if d >= 0 && int(d) < len(divisionNames) {
		return divisionNames[d]
	}
	return "1/16"
}

// ParseDivision maps a division label ("1/16", "1/8T", ...) back to its
// value. Unknown labels fall back to sixteenths.
func ParseDivision(s string) Division {
	for i, name := range divisionNames {
		if name == s {
			return Division(i)
		}
	}
	return DivSixteenth
}

// BeatFraction returns the step length as a fraction of one beat.
func (d Division) BeatFraction() float64 {
	switch d {
	case DivQuarter:
		return 1.0
	case DivEighth:
		return 0.5
	case DivEighthTriplet:
		return 1.0 / 3.0
	case DivSixteenthTriplet:
		return 1.0 / 6.0
	default:
		return 0.25
	}
}

// Scheduler drives a group in real time. Each lane runs in its own
// goroutine so different divisions and step counts free-run against each
// other; events go to the sink as they fire, ratchet sub-hits via timers.
type Scheduler struct {
	group *Group
	sink  midi.Sink

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewScheduler(g *Group, sink midi.Sink) *Scheduler {
	return &Scheduler{group: g, sink: sink}
}

// Start puts the group into play and launches one clock goroutine per
// lane. Calling Start while running is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.group.Play()
	debug.Log("clock", "started, tempo=%.1f", s.group.TempoBPM())
	for i := 0; i < NumLanes; i++ {
		s.wg.Add(1)
		go s.laneLoop(i, s.stopChan)
	}
}

// Stop halts the clocks and freezes the group's playheads in place, so a
// subsequent Start resumes where playback left off.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopChan)
	s.mu.Unlock()

	s.wg.Wait()
	s.group.Stop()
	debug.Log("clock", "stopped")
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// laneLoop steps one lane on its own grid. Swing delays the odd steps of
// the pair without shifting the underlying grid, so the next even step
// still lands on time.
func (s *Scheduler) laneLoop(idx int, stop chan struct{}) {
	defer s.wg.Done()
	lane := s.group.Lanes[idx]

	timer := time.NewTimer(0)
	defer timer.Stop()

	// next tracks the unswung grid so swing delays never accumulate; the
	// step after a delayed one still lands on time.
	next := time.Now()

	for {
		select {
		case <-stop:
			return
		case <-timer.C:
		}

		stepDur := s.group.StepDuration(lane.StepDivision())

		events := s.group.Tick(idx)
		for _, ev := range events {
			if ev.StepOffset == 0 {
				s.sink.Emit(ev)
				continue
			}
			ev := ev
			time.AfterFunc(time.Duration(float64(stepDur)*ev.StepOffset), func() {
				select {
				case <-stop:
				default:
					s.sink.Emit(ev)
				}
			})
		}

		next = next.Add(stepDur)
		fire := next
		// Odd steps in each pair get pushed late by up to 75% of the step.
		if lane.StepIndex()%2 == 1 {
			if sw := lane.SwingAmount(); sw > 0 {
				fire = fire.Add(time.Duration(float64(stepDur) * sw))
			}
		}
		timer.Reset(time.Until(fire))
	}
}
