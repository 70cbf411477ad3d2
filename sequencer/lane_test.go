package sequencer

import (
	"testing"

	"groovegen/rng"
)

func testLane(seed string) *Lane {
	l := newLane()
	l.bind(rng.Derive(seed, "trig"), rng.Derive(seed, "evolve"))
	return l
}

// advanceBars runs the lane for n full bars and returns every event.
func advanceBars(l *Lane, n int) [][]int {
	bars := make([][]int, 0, n)
	var fired []int
	for {
		step := l.StepIndex()
		events, wrapped := l.Advance()
		if len(events) > 0 {
			fired = append(fired, step)
		}
		if wrapped {
			bars = append(bars, fired)
			fired = nil
			if len(bars) == n {
				return bars
			}
		}
	}
}

func TestTrigConditionGating(t *testing.T) {
	l := testLane("cond")
	l.Edit(func(l *Lane) {
		l.Trigger.SetSteps(4)
		l.Trigger.SetHits(1)
		for i := range l.Trigger.Probability {
			l.Trigger.Probability[i] = 1.0
		}
		// Fire only on the 2nd bar of every 4.
		l.Trigger.Condition[0] = TrigCondition{Hit: 2, Cycle: 4}
	})

	bars := advanceBars(l, 8)
	for bar, fired := range bars {
		want := bar%4 == 1
		if (len(fired) > 0) != want {
			t.Fatalf("bar %d: fired=%v, want %v", bar, fired, want)
		}
	}
}

func TestLazyResizePreservesValues(t *testing.T) {
	l := testLane("resize")
	l.Edit(func(l *Lane) {
		l.Trigger.Probability[3] = 0.42
		l.Trigger.Ratchet[5] = 3
		l.Trigger.SetSteps(8)
	})
	if got := l.Trigger.Probability[3]; got != 0.42 {
		t.Fatalf("probability lost on shrink: %v", got)
	}
	if got := l.Trigger.Ratchet[5]; got != 3 {
		t.Fatalf("ratchet lost on shrink: %v", got)
	}

	l.Edit(func(l *Lane) {
		l.Trigger.SetSteps(24)
	})
	if got := l.Trigger.Probability[3]; got != 0.42 {
		t.Fatalf("probability lost on grow: %v", got)
	}
	// New slots get defaults, not zeroes.
	if got := l.Trigger.Probability[20]; got != 1.0 {
		t.Fatalf("grown probability default = %v", got)
	}
	if got := l.Trigger.Ratchet[20]; got != 1 {
		t.Fatalf("grown ratchet default = %v", got)
	}
	if c := l.Trigger.Condition[20]; c.Hit != 1 || c.Cycle != 1 {
		t.Fatalf("grown condition default = %+v", c)
	}
}

func TestModLaneDirections(t *testing.T) {
	m := ModLane{Steps: 4, Direction: DirForward}
	for hc, want := range []int{0, 1, 2, 3, 0, 1} {
		if got := m.IndexAt(int64(hc)); got != want {
			t.Fatalf("forward hc=%d: got %d, want %d", hc, got, want)
		}
	}

	m.Direction = DirReverse
	for hc, want := range []int{3, 2, 1, 0, 3, 2} {
		if got := m.IndexAt(int64(hc)); got != want {
			t.Fatalf("reverse hc=%d: got %d, want %d", hc, got, want)
		}
	}

	// PingPong over 4 steps cycles 0 1 2 3 2 1 with period 6.
	m.Direction = DirPingPong
	for hc, want := range []int{0, 1, 2, 3, 2, 1, 0, 1} {
		if got := m.IndexAt(int64(hc)); got != want {
			t.Fatalf("pingpong hc=%d: got %d, want %d", hc, got, want)
		}
	}
}

func TestModLanePolymeter(t *testing.T) {
	// A 3-step mod lane against a 4-step mod lane realigns every 12 hits.
	a := ModLane{Steps: 3}
	b := ModLane{Steps: 4}
	for hc := int64(1); hc < 12; hc++ {
		if a.IndexAt(hc) == a.IndexAt(0) && b.IndexAt(hc) == b.IndexAt(0) {
			t.Fatalf("realigned early at hit %d", hc)
		}
	}
	if a.IndexAt(12) != a.IndexAt(0) || b.IndexAt(12) != b.IndexAt(0) {
		t.Fatal("did not realign at hit 12")
	}
}

func TestTriggerLanePolyrhythm(t *testing.T) {
	// Two trigger lanes of 3 and 4 steps on the same division realign only
	// every LCM(3,4)=12 steps.
	a := testLane("poly-a")
	b := testLane("poly-b")
	a.Edit(func(l *Lane) {
		l.Trigger.SetSteps(3)
		l.Trigger.SetHits(3)
	})
	b.Edit(func(l *Lane) {
		l.Trigger.SetSteps(4)
		l.Trigger.SetHits(4)
	})

	for s := 0; s < 12; s++ {
		aligned := a.StepIndex() == 0 && b.StepIndex() == 0
		if aligned != (s == 0) {
			t.Fatalf("step %d: alignment=%v", s, aligned)
		}
		evA, _ := a.Advance()
		evB, _ := b.Advance()
		if len(evA) == 0 || len(evB) == 0 {
			t.Fatalf("step %d: all-hits lane silent", s)
		}
	}
	if a.StepIndex() != 0 || b.StepIndex() != 0 {
		t.Fatalf("no realignment after 12 steps: %d, %d", a.StepIndex(), b.StepIndex())
	}
	if a.Bars() != 4 || b.Bars() != 3 {
		t.Fatalf("bar counts = %d, %d; want 4, 3", a.Bars(), b.Bars())
	}
}

func TestRatchetExpansion(t *testing.T) {
	l := testLane("ratchet")
	l.Edit(func(l *Lane) {
		l.Trigger.SetSteps(4)
		l.Trigger.SetHits(1)
		l.Trigger.Ratchet[0] = 3
		for i := range l.Trigger.Probability {
			l.Trigger.Probability[i] = 1.0
		}
		for i := range l.Mod[ModExpression].Values {
			l.Mod[ModExpression].Values[i] = 1.0
		}
	})

	events, _ := l.Advance()
	if len(events) != 3 {
		t.Fatalf("got %d sub-hits, want 3", len(events))
	}
	wantVel := 1.0
	for k, ev := range events {
		if ev.RatchetIndex != k || ev.RatchetCount != 3 {
			t.Fatalf("sub-hit %d: index=%d count=%d", k, ev.RatchetIndex, ev.RatchetCount)
		}
		if got := ev.StepOffset; got != float64(k)/3 {
			t.Fatalf("sub-hit %d offset = %v", k, got)
		}
		if ev.Velocity != wantVel {
			t.Fatalf("sub-hit %d velocity = %v, want %v", k, ev.Velocity, wantVel)
		}
		wantVel *= ratchetDecay
	}

	// The whole ratchet group counts as one hit for the mod lanes.
	if got := l.HitCount(); got != 1 {
		t.Fatalf("hit count = %d after one ratcheted step", got)
	}
}

func TestProbabilityDeterminism(t *testing.T) {
	run := func() []int {
		l := testLane("prob-det")
		l.Edit(func(l *Lane) {
			for i := range l.Trigger.Probability {
				l.Trigger.Probability[i] = 0.5
			}
		})
		var fired []int
		for s := 0; s < 256; s++ {
			step := l.StepIndex()
			if events, _ := l.Advance(); len(events) > 0 {
				fired = append(fired, step)
			}
		}
		return fired
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("runs differ in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("runs diverge at event %d: %d vs %d", i, a[i], b[i])
		}
	}
	if len(a) == 0 {
		t.Fatal("no events fired at probability 0.5")
	}
}

func TestMutedLaneKeepsAdvancing(t *testing.T) {
	g := NewGroup("mute-advance")
	g.Play()
	g.Lanes[0].Muted = true

	for i := 0; i < 16; i++ {
		if events := g.Tick(0); len(events) != 0 {
			t.Fatalf("muted lane emitted %d events", len(events))
		}
	}
	if got := g.Lanes[0].TotalSteps(); got != 16 {
		t.Fatalf("muted lane advanced %d steps, want 16", got)
	}
}
