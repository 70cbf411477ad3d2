// Package config handles the application's persistent settings.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config holds the startup settings.
type Config struct {
	Seed            string    `json:"seed"`
	Tempo           float64   `json:"tempo"`
	MidiPortName    string    `json:"midiPortName"`
	MidiChannel     int       `json:"midiChannel"`
	Kit             string    `json:"kit"`
	Divisions       [4]string `json:"divisions"`
	Swing           float64   `json:"swing"`
	EvolveEveryBars int       `json:"evolveEveryBars"`
	EvolveIntensity float64   `json:"evolveIntensity"`
	Debug           bool      `json:"debug"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Seed:            "groovegen",
		Tempo:           120,
		MidiPortName:    "",
		MidiChannel:     10,
		Kit:             "gm",
		Divisions:       [4]string{"1/16", "1/16", "1/16", "1/16"},
		Swing:           0,
		EvolveEveryBars: 1,
		EvolveIntensity: 0.5,
		Debug:           false,
	}
}

// ConfigDir returns the directory where config files are stored.
func ConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "groovegen"), nil
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	dir, err := ConfigDir()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// Save writes the config file.
func Save(cfg Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}
