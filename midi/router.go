package midi

import (
	"fmt"
	"strings"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"groovegen/debug"
)

// Morph and distance side-values go out as CCs alongside each hit.
const (
	ccMorph    uint8 = 70
	ccDistance uint8 = 71
)

// Router is a Sink that sends trigger events to a MIDI output port,
// translating voice bits to kit notes. Emit never blocks: events are pushed
// onto a buffered channel and dispatched by a background goroutine.
type Router struct {
	send    func(gomidi.Message) error
	channel uint8
	kit     Kit

	events   chan TriggerEvent
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewRouter opens the named output port (substring match) and starts the
// dispatch goroutine. Channel is 1-16.
func NewRouter(portName string, channel int, kitName string) (*Router, error) {
	if channel < 1 {
		channel = 1
	}
	if channel > 16 {
		channel = 16
	}

	var send func(gomidi.Message) error
	for _, port := range gomidi.GetOutPorts() {
		if strings.Contains(strings.ToLower(port.String()), strings.ToLower(portName)) {
			s, err := gomidi.SendTo(port)
			if err != nil {
				return nil, err
			}
			send = s
			break
		}
	}
	if send == nil {
		return nil, fmt.Errorf("midi: no output port matching %q", portName)
	}

	r := &Router{
		send:     send,
		channel:  uint8(channel - 1),
		kit:      GetKit(kitName),
		events:   make(chan TriggerEvent, 128),
		stopChan: make(chan struct{}),
	}
	go r.dispatchLoop()
	return r, nil
}

// Emit queues an event for dispatch. Drops when the queue is full.
func (r *Router) Emit(ev TriggerEvent) {
	select {
	case r.events <- ev:
	default:
		debug.Log("midi", "router queue full, dropped lane=%d", ev.Lane)
	}
}

// Close stops the dispatch goroutine.
func (r *Router) Close() {
	r.stopOnce.Do(func() { close(r.stopChan) })
}

func (r *Router) dispatchLoop() {
	for {
		select {
		case <-r.stopChan:
			return
		case ev := <-r.events:
			r.sendEvent(ev)
		}
	}
}

func (r *Router) sendEvent(ev TriggerEvent) {
	var sendErr error
	send := func(msg gomidi.Message) {
		if err := r.send(msg); err != nil && sendErr == nil {
			sendErr = err
		}
	}

	vel := uint8(clamp01(ev.Velocity) * 127)
	send(gomidi.ControlChange(r.channel, ccMorph, uint8(clamp01(ev.Morph)*127)))
	send(gomidi.ControlChange(r.channel, ccDistance, uint8(clamp01(ev.Distance)*127)))

	for _, voice := range ev.Voices.Voices() {
		note := int(r.kit.Notes[voice]) + ev.PitchOffset
		if note < 0 {
			note = 0
		}
		if note > 127 {
			note = 127
		}
		n := uint8(note)
		send(gomidi.NoteOn(r.channel, n, vel))
		// Percussion hits are one-shots; close the gate right away.
		send(gomidi.NoteOff(r.channel, n))
	}

	if sendErr != nil {
		debug.Log("midi", "send failed lane=%d: %v", ev.Lane, sendErr)
		return
	}
	debug.LogEvery(64, "midi", "dispatch lane=%d mask=%08b vel=%d ratchet=%d/%d",
		ev.Lane, ev.Voices, vel, ev.RatchetIndex+1, ev.RatchetCount)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
