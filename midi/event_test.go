package midi

import "testing"

func TestVoiceMask(t *testing.T) {
	m := Mask(VoiceKick, VoiceClave)
	if !m.Has(VoiceKick) || !m.Has(VoiceClave) || m.Has(VoiceSnare) {
		t.Fatalf("mask = %08b", m)
	}

	m.Toggle(VoiceSnare)
	if !m.Has(VoiceSnare) {
		t.Fatal("toggle on failed")
	}
	m.Toggle(VoiceSnare)
	if m.Has(VoiceSnare) {
		t.Fatal("toggle off failed")
	}

	m.Clear(VoiceKick)
	voices := m.Voices()
	if len(voices) != 1 || voices[0] != VoiceClave {
		t.Fatalf("voices = %v", voices)
	}
}

func TestGetKitFallback(t *testing.T) {
	if got := GetKit("nope").Name; got != "General MIDI" {
		t.Fatalf("fallback kit = %q", got)
	}
	// RD-8 maps the snare differently from GM.
	if GetKit("rd8").Notes[VoiceSnare] == GetKit("gm").Notes[VoiceSnare] {
		t.Fatal("rd8 snare should differ from gm")
	}
}

func TestChanSinkNeverBlocks(t *testing.T) {
	s := NewChanSink(2)
	for i := 0; i < 10; i++ {
		s.Emit(TriggerEvent{Lane: i})
	}
	got := s.Drain()
	if len(got) != 2 {
		t.Fatalf("buffered %d events, want 2", len(got))
	}
	if got[0].Lane != 0 || got[1].Lane != 1 {
		t.Fatalf("kept wrong events: %+v", got)
	}
}
