// Package preset saves and loads full group states as timestamped JSON
// files under the user config directory.
package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"groovegen/debug"
	"groovegen/sequencer"
)

// baseDir overrides the preset location when non-empty (tests).
var baseDir string

// Dir returns the preset directory, creating it if needed.
func Dir() (string, error) {
	dir := baseDir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(homeDir, ".config", "groovegen", "presets")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// Save writes the group to a timestamped preset file. An optional name is
// appended to the filename.
func Save(g *sequencer.Group, name string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}

	filename := time.Now().Format("2006-01-02_15-04-05")
	if name != "" {
		filename += "_" + sanitize(name)
	}
	filename += ".json"
	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}

	debug.Log("preset", "saved %s", filename)
	return filename, nil
}

// List returns the available preset filenames, newest first. The
// timestamp prefix makes lexical order chronological.
func List() ([]string, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// Load reads a preset into the given group. The group's playback stops
// and its RNG streams rebind from the restored seed.
func Load(g *sequencer.Group, filename string) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		return err
	}

	loaded := sequencer.NewGroup("")
	if err := json.Unmarshal(data, loaded); err != nil {
		return fmt.Errorf("preset %s: %w", filename, err)
	}
	g.Restore(loaded)

	debug.Log("preset", "loaded %s", filename)
	return nil
}

// Delete removes a preset file.
func Delete(filename string) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.Remove(filepath.Join(dir, filename))
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return '-'
		}
	}, name)
}
