package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"groovegen/config"
	"groovegen/debug"
	"groovegen/midi"
	"groovegen/sequencer"
	"groovegen/tui"
)

func main() {
	seedFlag := flag.String("seed", "", "override the performance seed")
	portFlag := flag.String("port", "", "MIDI output port (substring match)")
	debugFlag := flag.Bool("debug", false, "log to ~/.config/groovegen/debug.log")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v (using defaults)\n", err)
	}
	if *seedFlag != "" {
		cfg.Seed = *seedFlag
	}
	if *portFlag != "" {
		cfg.MidiPortName = *portFlag
	}
	if *debugFlag {
		cfg.Debug = true
	}

	if cfg.Debug {
		if err := debug.Enable(); err != nil {
			fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	group := sequencer.NewGroup(cfg.Seed)
	group.SetTempo(cfg.Tempo)
	for i, lane := range group.Lanes {
		div := sequencer.ParseDivision(cfg.Divisions[i])
		lane.Edit(func(l *sequencer.Lane) {
			l.Division = div
			l.Swing = cfg.Swing
			l.Evolve.SetEveryBars(cfg.EvolveEveryBars)
			l.Evolve.SetIntensity(cfg.EvolveIntensity)
		})
	}

	// Without a MIDI port, events still flow into a local sink so the
	// monitor works and nothing blocks.
	var sink midi.Sink
	if router, err := midi.NewRouter(cfg.MidiPortName, cfg.MidiChannel, cfg.Kit); err == nil {
		defer router.Close()
		sink = router
	} else {
		fmt.Fprintf(os.Stderr, "midi: %v (running silent)\n", err)
		sink = midi.NewChanSink(256)
	}

	scheduler := sequencer.NewScheduler(group, sink)
	defer scheduler.Stop()

	p := tea.NewProgram(tui.NewModel(group, scheduler))
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tui: %v\n", err)
		os.Exit(1)
	}
}
