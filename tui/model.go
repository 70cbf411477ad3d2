// Package tui renders the live performance monitor.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"groovegen/preset"
	"groovegen/sequencer"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	playheadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	ghostStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

var laneNames = [sequencer.NumLanes]string{"KICK", "SNARE", "HATS", "PERC"}

// UpdateMsg signals that the group mutated and the view should redraw.
type UpdateMsg struct{}

// TickMsg drives the playhead redraw while the clock runs.
type TickMsg struct{}

// Model is the bubbletea model wrapping a group and its scheduler.
type Model struct {
	group     *sequencer.Group
	scheduler *sequencer.Scheduler
	selected  int
	status    string
}

func NewModel(g *sequencer.Group, s *sequencer.Scheduler) Model {
	return Model{group: g, scheduler: s}
}

// ListenForUpdates waits for the next group change notification.
func (m Model) ListenForUpdates() tea.Cmd {
	return func() tea.Msg {
		<-m.group.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.group.StepDuration(sequencer.DivSixteenth), func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.ListenForUpdates(), m.tick())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case UpdateMsg:
		return m, m.ListenForUpdates()
	case TickMsg:
		return m, m.tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	lane := m.group.Lanes[m.selected]

	switch msg.String() {
	case "q", "ctrl+c":
		m.scheduler.Stop()
		return m, tea.Quit

	case " ", "p":
		if m.scheduler.Running() {
			m.scheduler.Stop()
			m.status = "stopped"
		} else {
			m.scheduler.Start()
			m.status = "playing"
		}

	case "1", "2", "3", "4":
		m.selected = int(msg.String()[0] - '1')

	case "e":
		on := !lane.EvolveEnabled()
		lane.SetEvolveEnabled(on)
		if on {
			m.status = "evolve on"
		} else {
			m.status = "evolve off"
		}

	case "h":
		m.group.SnapshotHome(m.selected)
		m.status = "home captured"

	case "r":
		m.group.ResetLane(m.selected)
		m.status = "reset to home"

	case "m":
		lane.Edit(func(l *sequencer.Lane) { l.Muted = !l.Muted })

	case "o":
		lane.Edit(func(l *sequencer.Lane) { l.Solo = !l.Solo })

	case "+", "=":
		m.group.SetTempo(m.group.TempoBPM() + 2)
	case "-":
		m.group.SetTempo(m.group.TempoBPM() - 2)

	case "]":
		lane.Edit(func(l *sequencer.Lane) {
			l.Evolve.SetIntensity(l.Evolve.Intensity + 0.1)
		})
	case "[":
		lane.Edit(func(l *sequencer.Lane) {
			l.Evolve.SetIntensity(l.Evolve.Intensity - 0.1)
		})

	case "w":
		if name, err := preset.Save(m.group, ""); err == nil {
			m.status = "saved " + name
		} else {
			m.status = "save failed: " + err.Error()
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	state := "stopped"
	if m.scheduler.Running() {
		state = "playing"
	}
	b.WriteString(titleStyle.Render("groovegen"))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %s  %.0f bpm  seed=%s", state, m.group.TempoBPM(), m.group.Seed)))
	b.WriteString("\n\n")

	for i, lane := range m.group.Lanes {
		b.WriteString(m.laneView(i, lane))
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n" + statusStyle.Render(m.status) + "\n")
	}
	b.WriteString(dimStyle.Render("\nspace play  1-4 lane  e evolve  h home  r reset  m mute  o solo  +/- tempo  [/] intensity  w save  q quit\n"))
	return b.String()
}

func (m Model) laneView(i int, lane *sequencer.Lane) string {
	var b strings.Builder

	name := fmt.Sprintf("%-6s", laneNames[i])
	if i == m.selected {
		b.WriteString(selectedStyle.Render("> " + name))
	} else {
		b.WriteString(dimStyle.Render("  " + name))
	}
	b.WriteString(" ")

	playhead := lane.StepIndex()
	bars := lane.Bars()
	running := m.scheduler.Running()

	// One locked snapshot of everything the view needs; the clock may be
	// mutating the lane while we render.
	var (
		row                   strings.Builder
		steps, hits, rot      int
		division              sequencer.Division
		swing, intensity      float64
		evolveOn, muted, solo bool
	)
	lane.Edit(func(l *sequencer.Lane) {
		for s := 0; s < l.Trigger.Steps; s++ {
			var cell string
			switch {
			case s == playhead && running:
				cell = playheadStyle.Render("▶")
			case l.Trigger.Ghost[s]:
				cell = ghostStyle.Render("◦")
			case l.Trigger.Pattern[s]:
				cell = "●"
			default:
				cell = dimStyle.Render("·")
			}
			row.WriteString(cell + " ")
		}
		steps, hits, rot = l.Trigger.Steps, l.Trigger.Hits, l.Trigger.Rotation
		division = l.Division
		swing = l.Swing
		evolveOn, intensity = l.Evolve.Enabled, l.Evolve.Intensity
		muted, solo = l.Muted, l.Solo
	})
	b.WriteString(row.String())

	info := fmt.Sprintf(" %2d/%-2d r%d %s sw%.2f", hits, steps, rot, division, swing)
	if evolveOn {
		info += fmt.Sprintf(" evo%.1f bar%d", intensity, bars)
	}
	b.WriteString(dimStyle.Render(info))

	if muted {
		b.WriteString(mutedStyle.Render(" M"))
	}
	if solo {
		b.WriteString(selectedStyle.Render(" S"))
	}
	return b.String()
}
