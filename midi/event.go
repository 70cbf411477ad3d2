package midi

// Voice identifies one of the closed set of percussion voices a lane can
// route its triggers to.
type Voice uint8

const (
	VoiceKick Voice = iota
	VoiceSnare
	VoiceClosedHat
	VoiceOpenHat
	VoiceTom
	VoicePerc
	VoiceClave
	NumVoices
)

var voiceNames = []string{"Kick", "Snare", "CHat", "OHat", "Tom", "Perc", "Clave"}

func (v Voice) String() string {
	if int(v) < len(voiceNames) {
		return voiceNames[v]
	}
	return "?"
}

// VoiceMask is a bitset of target voices.
type VoiceMask uint8

// Mask builds a VoiceMask from voices.
func Mask(voices ...Voice) VoiceMask {
	var m VoiceMask
	for _, v := range voices {
		m.Set(v)
	}
	return m
}

func (m VoiceMask) Has(v Voice) bool { return m&(1<<v) != 0 }
func (m *VoiceMask) Set(v Voice)     { *m |= 1 << v }
func (m *VoiceMask) Clear(v Voice)   { *m &^= 1 << v }
func (m *VoiceMask) Toggle(v Voice)  { *m ^= 1 << v }

// Voices expands the mask to the voices it contains.
func (m VoiceMask) Voices() []Voice {
	var out []Voice
	for v := Voice(0); v < NumVoices; v++ {
		if m.Has(v) {
			out = append(out, v)
		}
	}
	return out
}

// TriggerEvent is one fired (sub-)hit handed to the synthesis layer.
// RatchetIndex runs 0..RatchetCount-1; StepOffset is the sub-hit's position
// within the step duration as a fraction in [0, 1).
type TriggerEvent struct {
	Lane         int
	Voices       VoiceMask
	Velocity     float64
	PitchOffset  int
	Morph        float64
	Distance     float64
	RatchetIndex int
	RatchetCount int
	StepOffset   float64
}

// Sink receives trigger events. Emit must not block the scheduler; a sink
// that cannot keep up drops events.
type Sink interface {
	Emit(TriggerEvent)
}

// ChanSink is a buffered, non-blocking Sink. Events are dropped when the
// consumer falls behind; back-pressure never reaches the scheduler.
type ChanSink struct {
	C chan TriggerEvent
}

func NewChanSink(size int) *ChanSink {
	return &ChanSink{C: make(chan TriggerEvent, size)}
}

func (s *ChanSink) Emit(ev TriggerEvent) {
	select {
	case s.C <- ev:
	default:
	}
}

// Drain empties the buffer and returns whatever had accumulated.
func (s *ChanSink) Drain() []TriggerEvent {
	var out []TriggerEvent
	for {
		select {
		case ev := <-s.C:
			out = append(out, ev)
		default:
			return out
		}
	}
}
