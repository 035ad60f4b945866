// Package converter provides conversion from a tempo in BPM to note durations
package converter

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Subdivision identifies a note value relative to a quarter note
type Subdivision int

const (
	Whole Subdivision = iota
	Half
	Quarter
	Eighth
	Sixteenth
	ThirtySecond
	SixtyFourth
	OneHundredTwentyEighth
)

type subdivisionInfo struct {
	key        string
	label      string
	fraction   string
	multiplier float64
}

var subdivisionTable = [...]subdivisionInfo{
	Whole:                  {"whole", "Whole Note", "1/1", 4.0},
	Half:                   {"half", "Half Note", "1/2", 2.0},
	Quarter:                {"quarter", "Quarter Note", "1/4", 1.0},
	Eighth:                 {"eighth", "Eighth Note", "1/8", 0.5},
	Sixteenth:              {"sixteenth", "Sixteenth Note", "1/16", 0.25},
	ThirtySecond:           {"thirty-second", "Thirty-second Note", "1/32", 0.125},
	SixtyFourth:            {"sixty-fourth", "Sixty-fourth Note", "1/64", 0.0625},
	OneHundredTwentyEighth: {"one-hundred-twenty-eighth", "One hundred twenty-eighth Note", "1/128", 0.03125},
}

// Valid reports whether s is one of the eight known subdivisions
func (s Subdivision) Valid() bool {
	return s >= Whole && s <= OneHundredTwentyEighth
}

// Key returns the short machine-readable name, e.g. "quarter"
func (s Subdivision) Key() string {
	if !s.Valid() {
		return fmt.Sprintf("subdivision(%d)", int(s))
	}
	return subdivisionTable[s].key
}

// Fraction returns the note value as a fraction of a whole note, e.g. "1/4"
func (s Subdivision) Fraction() string {
	if !s.Valid() {
		return "?"
	}
	return subdivisionTable[s].fraction
}

// String returns the display label, e.g. "Quarter Note (1/4)"
func (s Subdivision) String() string {
	if !s.Valid() {
		return s.Key()
	}
	info := subdivisionTable[s]
	return fmt.Sprintf("%s (%s)", info.label, info.fraction)
}

// MarshalText implements encoding.TextMarshaler using the key
func (s Subdivision) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSubdivision, int(s))
	}
	return []byte(s.Key()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler via ParseSubdivision
func (s *Subdivision) UnmarshalText(text []byte) error {
	parsed, err := ParseSubdivision(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Subdivisions returns all subdivisions from Whole down to 1/128
func Subdivisions() []Subdivision {
	return []Subdivision{
		Whole, Half, Quarter, Eighth, Sixteenth, ThirtySecond, SixtyFourth, OneHundredTwentyEighth,
	}
}

// TableSubdivisions returns the subdivisions listed by BuildTable, in order
func TableSubdivisions() []Subdivision {
	return []Subdivision{
		Quarter, Eighth, Sixteenth, ThirtySecond, SixtyFourth, OneHundredTwentyEighth,
	}
}

// ParseSubdivision resolves a key ("eighth"), a fraction ("1/8"), a bare
// denominator ("8") or a display label ("Eighth Note (1/8)"). Unknown input
// is an error; there is no fallback subdivision.
func ParseSubdivision(raw string) (Subdivision, error) {
	needle := strings.ToLower(strings.TrimSpace(raw))
	if needle == "" {
		return 0, fmt.Errorf("%w: empty", ErrUnknownSubdivision)
	}
	for _, s := range Subdivisions() {
		info := subdivisionTable[s]
		_, denom, _ := strings.Cut(info.fraction, "/")
		switch needle {
		case info.key, info.fraction, denom, strings.ToLower(s.String()), strings.ToLower(info.label):
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSubdivision, raw)
}

// Tempo is a validated tempo in beats per minute, always greater than zero
type Tempo float64

// BPM returns the tempo as a plain float
func (t Tempo) BPM() float64 {
	return float64(t)
}

// IsHigh reports whether the tempo exceeds HighTempoThreshold
func (t Tempo) IsHigh() bool {
	return float64(t) > HighTempoThreshold
}

// BeatInterval returns the length of one quarter note. Tempos too slow for a
// time.Duration saturate at the largest representable interval.
func (t Tempo) BeatInterval() time.Duration {
	ns := MillisecondsPerMinute / float64(t) * float64(time.Millisecond)
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}

// Advisory is a non-fatal signal attached to a successfully parsed tempo
type Advisory int

const (
	AdvisoryNone Advisory = iota
	AdvisoryHighTempo
)

func (a Advisory) String() string {
	switch a {
	case AdvisoryHighTempo:
		return "very high BPM value, check that it is correct"
	default:
		return ""
	}
}

// Duration holds the length of one subdivision at one tempo
type Duration struct {
	Subdivision  Subdivision `json:"note"`
	Milliseconds float64     `json:"milliseconds"`
	Seconds      float64     `json:"seconds"`
}

// Table holds durations for TableSubdivisions at a single tempo
type Table struct {
	Tempo Tempo      `json:"bpm"`
	Rows  []Duration `json:"rows"`
}
