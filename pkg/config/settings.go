// Package config loads user defaults for the bpm2ms front ends
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/james-see/bpm2ms/pkg/converter"
)

// Settings holds all configuration options.
type Settings struct {
	// Conversion defaults
	DefaultNote converter.Subdivision `json:"default_note"`

	// Click track export
	ClickBars       int    `json:"click_bars"`
	ClickChannel    uint8  `json:"click_channel"`
	ClickAccentNote uint8  `json:"click_accent_note"`
	ClickNote       uint8  `json:"click_note"`
	SampleRate      int    `json:"sample_rate"`
	ClickFormat     string `json:"click_format"` // mid, wav

	// API server
	ServerPort int `json:"server_port"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	click := converter.DefaultClickOptions()
	return &Settings{
		DefaultNote: converter.Quarter,

		ClickBars:       click.Bars,
		ClickChannel:    click.Channel,
		ClickAccentNote: click.AccentNote,
		ClickNote:       click.ClickNote,
		SampleRate:      44100,
		ClickFormat:     "mid",

		ServerPort: 8080,
	}
}

// DefaultPath returns the settings location under the user config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir, _ = os.UserHomeDir()
	}
	return filepath.Join(dir, "bpm2ms", "settings.json")
}

// Load reads settings from a JSON file. A missing file yields defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings in %s: %w", path, err)
	}

	return settings, nil
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks value ranges.
func (s *Settings) Validate() error {
	if !s.DefaultNote.Valid() {
		return fmt.Errorf("default_note: %w", converter.ErrUnknownSubdivision)
	}
	if s.ClickBars <= 0 {
		return fmt.Errorf("click_bars must be positive, got %d", s.ClickBars)
	}
	if s.ClickChannel > 15 {
		return fmt.Errorf("click_channel must be 0-15, got %d", s.ClickChannel)
	}
	if s.ClickAccentNote > 127 || s.ClickNote > 127 {
		return fmt.Errorf("click notes must be 0-127")
	}
	if s.SampleRate <= 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", s.SampleRate)
	}
	if s.ClickFormat != "mid" && s.ClickFormat != "wav" {
		return fmt.Errorf("click_format must be mid or wav, got %q", s.ClickFormat)
	}
	if s.ServerPort < 1 || s.ServerPort > 65535 {
		return fmt.Errorf("server_port must be 1-65535, got %d", s.ServerPort)
	}
	return nil
}

// ToClickOptions converts settings to converter.ClickOptions.
func (s *Settings) ToClickOptions() converter.ClickOptions {
	opts := converter.DefaultClickOptions()
	opts.Bars = s.ClickBars
	opts.Channel = s.ClickChannel
	opts.AccentNote = s.ClickAccentNote
	opts.ClickNote = s.ClickNote
	return opts
}
