package converter

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// MillisecondsPerMinute is the numerator of every duration formula
	MillisecondsPerMinute = 60000.0

	// HighTempoThreshold is the BPM above which ParseTempo raises AdvisoryHighTempo
	HighTempoThreshold = 1000.0
)

var (
	ErrEmptyInput         = errors.New("please enter a BPM value")
	ErrNotANumber         = errors.New("please enter a valid number for BPM")
	ErrNonPositive        = errors.New("BPM must be greater than 0")
	ErrUnknownSubdivision = errors.New("unknown note value")
)

// TempoError reports why a raw BPM string was rejected
type TempoError struct {
	Input string
	Err   error
}

func (e *TempoError) Error() string {
	if strings.TrimSpace(e.Input) == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s (got %q)", e.Err, e.Input)
}

func (e *TempoError) Unwrap() error {
	return e.Err
}

// ParseTempo validates free-text BPM input. A tempo above HighTempoThreshold
// is accepted together with AdvisoryHighTempo.
func ParseTempo(raw string) (Tempo, Advisory, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return 0, AdvisoryNone, &TempoError{Input: raw, Err: ErrEmptyInput}
	}

	bpm, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return 0, AdvisoryNone, &TempoError{Input: raw, Err: ErrNotANumber}
	}

	return NewTempo(bpm)
}

// NewTempo validates an already numeric BPM value
func NewTempo(bpm float64) (Tempo, Advisory, error) {
	if math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return 0, AdvisoryNone, &TempoError{Input: strconv.FormatFloat(bpm, 'g', -1, 64), Err: ErrNotANumber}
	}
	if bpm <= 0 {
		return 0, AdvisoryNone, &TempoError{Input: strconv.FormatFloat(bpm, 'g', -1, 64), Err: ErrNonPositive}
	}

	t := Tempo(bpm)
	if t.IsHigh() {
		return t, AdvisoryHighTempo, nil
	}
	return t, AdvisoryNone, nil
}

// MultiplierFor returns the length of s in quarter notes
func MultiplierFor(s Subdivision) float64 {
	if !s.Valid() {
		// Only reachable through an unchecked integer conversion.
		panic(fmt.Sprintf("converter: invalid subdivision %d", int(s)))
	}
	return subdivisionTable[s].multiplier
}

// MsPerQuarter returns the length of one quarter note in milliseconds
func MsPerQuarter(t Tempo) float64 {
	return MillisecondsPerMinute / float64(t)
}

// Convert returns the duration of one s note at tempo t
func Convert(t Tempo, s Subdivision) Duration {
	return durationFrom(MsPerQuarter(t), s)
}

// BuildTable returns durations for every entry of TableSubdivisions
func BuildTable(t Tempo) Table {
	msPerQuarter := MsPerQuarter(t)
	subs := TableSubdivisions()

	rows := make([]Duration, 0, len(subs))
	for _, s := range subs {
		rows = append(rows, durationFrom(msPerQuarter, s))
	}
	return Table{Tempo: t, Rows: rows}
}

func durationFrom(msPerQuarter float64, s Subdivision) Duration {
	ms := msPerQuarter * MultiplierFor(s)
	return Duration{
		Subdivision:  s,
		Milliseconds: ms,
		Seconds:      ms / 1000,
	}
}
