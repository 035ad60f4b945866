package converter

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	// DefaultMIDITempo applies to files without a Set Tempo meta event
	DefaultMIDITempo = 120.0

	// TicksPerQuarter is the resolution of generated click tracks
	TicksPerQuarter = 480

	beatsPerBar = 4

	// Set Tempo stores microseconds per quarter note in 24 bits
	maxMicrosPerQuarter = 0xFFFFFF

	// MinMIDITempo and MaxMIDITempo bound the tempos a Set Tempo event can hold
	MinMIDITempo = 60e6 / maxMicrosPerQuarter
	MaxMIDITempo = 60e6
)

// ErrTempoOutOfRange is returned when a tempo cannot be stored in a MIDI file
var ErrTempoOutOfRange = errors.New("tempo cannot be stored in a MIDI file")

// ClickOptions controls ClickTrack output
type ClickOptions struct {
	Bars       int
	Channel    uint8
	AccentNote uint8 // played on each downbeat
	ClickNote  uint8
	Velocity   uint8
}

// DefaultClickOptions returns a one-bar GM percussion click (wood blocks on channel 10)
func DefaultClickOptions() ClickOptions {
	return ClickOptions{
		Bars:       1,
		Channel:    9,
		AccentNote: 76,
		ClickNote:  77,
		Velocity:   100,
	}
}

// ReadTempoFile reads a MIDI file and returns its tempo
func ReadTempoFile(filename string) (Tempo, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return 0, fmt.Errorf("failed to read MIDI file: %w", err)
	}
	return ReadTempo(data)
}

// ReadTempo returns the first Set Tempo event of a Standard MIDI File, or
// DefaultMIDITempo if the file has none.
func ReadTempo(data []byte) (Tempo, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("failed to parse MIDI: %w", err)
	}

	for _, track := range s.Tracks {
		for _, ev := range track {
			var bpm float64
			if !ev.Message.GetMetaTempo(&bpm) {
				continue
			}
			t, _, err := NewTempo(bpm)
			if err != nil {
				return 0, fmt.Errorf("invalid tempo event: %w", err)
			}
			return t, nil
		}
	}

	return Tempo(DefaultMIDITempo), nil
}

// ClickTrack generates a single-track SMF in 4/4 with one click per
// subdivision over opts.Bars bars. Downbeats use the accent note.
func ClickTrack(t Tempo, sub Subdivision, opts ClickOptions) ([]byte, error) {
	if opts.Bars <= 0 {
		return nil, errors.New("click track needs at least one bar")
	}
	if !sub.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSubdivision, int(sub))
	}
	if float64(t) <= MinMIDITempo || float64(t) > MaxMIDITempo {
		return nil, fmt.Errorf("%w: %s BPM (must be above %.4g and at most %g)", ErrTempoOutOfRange, FormatBPM(t), MinMIDITempo, float64(MaxMIDITempo))
	}
	if opts.Velocity == 0 {
		opts.Velocity = 100
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var track smf.Track
	track.Add(0, smf.MetaTempo(float64(t)))
	track.Add(0, smf.MetaMeter(beatsPerBar, 4))

	stepTicks := uint32(TicksPerQuarter * MultiplierFor(sub))
	barTicks := uint32(TicksPerQuarter * beatsPerBar)
	totalTicks := barTicks * uint32(opts.Bars)

	noteLength := stepTicks / 2
	if noteLength > TicksPerQuarter/8 {
		noteLength = TicksPerQuarter / 8
	}
	if noteLength == 0 {
		noteLength = 1
	}

	var currentTick uint32
	for tick := uint32(0); tick < totalTicks; tick += stepTicks {
		key := opts.ClickNote
		velocity := opts.Velocity
		if tick%barTicks == 0 {
			key = opts.AccentNote
			velocity = 127
		}

		track.Add(tick-currentTick, midi.NoteOn(opts.Channel, key, velocity))
		track.Add(noteLength, midi.NoteOff(opts.Channel, key))
		currentTick = tick + noteLength
	}

	// Pad so the file lasts exactly opts.Bars bars
	var tail uint32
	if currentTick < totalTicks {
		tail = totalTicks - currentTick
	}
	track.Close(tail)

	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("failed to add track: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write MIDI: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteClickFile writes a ClickTrack to filename
func WriteClickFile(filename string, t Tempo, sub Subdivision, opts ClickOptions) error {
	data, err := ClickTrack(t, sub, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
