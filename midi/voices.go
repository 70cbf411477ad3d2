package midi

// Kit maps the voice enum to MIDI notes for a particular drum machine.
type Kit struct {
	Name  string
	Notes [NumVoices]uint8
}

// Kits contains all available kit mappings.
var Kits = map[string]Kit{
	"gm": {
		Name: "General MIDI",
		Notes: [NumVoices]uint8{
			36, // Kick
			38, // Snare
			42, // Closed HH
			46, // Open HH
			43, // Mid Tom
			56, // Cowbell
			75, // Clave
		},
	},
	"rd8": {
		Name: "Behringer RD-8",
		Notes: [NumVoices]uint8{
			36, // Kick (BD)
			40, // Snare (SD) - note: RD-8 uses 40, not 38!
			42, // Closed HH (CH)
			46, // Open HH (OH)
			48, // Mid Tom (MT)
			56, // Cowbell (CB)
			75, // Clave (CL)
		},
	},
	"tr8s": {
		Name: "Roland TR-8S",
		Notes: [NumVoices]uint8{
			36, // Kick
			38, // Snare
			42, // Closed HH
			46, // Open HH
			43, // Mid Tom
			56, // Cowbell
			75, // Clave
		},
	},
}

// KitNames returns the list of available kit names.
func KitNames() []string {
	return []string{"gm", "rd8", "tr8s"}
}

// GetKit returns a kit by name, defaulting to GM if not found.
func GetKit(name string) Kit {
	if kit, ok := Kits[name]; ok {
		return kit
	}
	return Kits["gm"]
}

// DefaultKit is the default kit name.
const DefaultKit = "gm"
