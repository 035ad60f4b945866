// Package audio renders click tracks as PCM audio
package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/james-see/bpm2ms/pkg/converter"
)

const (
	DefaultSampleRate = beep.SampleRate(44100)

	clickLength = 20 * time.Millisecond
	clickFreq   = 1000.0
	accentFreq  = 1600.0
	beatsPerBar = 4
)

// ClickStreamer emits a short decaying sine at every subdivision boundary.
// Downbeats are pitched higher.
type ClickStreamer struct {
	sampleRate  beep.SampleRate
	stepSamples float64
	stepsPerBar int
	clickLen    int
	pos         int
	total       int
}

// NewClick returns a ClickStreamer lasting bars bars of 4/4 at tempo t
func NewClick(t converter.Tempo, sub converter.Subdivision, bars int, sr beep.SampleRate) (*ClickStreamer, error) {
	if bars <= 0 {
		return nil, errors.New("click needs at least one bar")
	}
	if sr <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sr)
	}

	step := converter.Convert(t, sub)
	stepSamples := step.Seconds * float64(sr)
	if stepSamples < 1 {
		return nil, fmt.Errorf("%s at %s BPM is shorter than one sample", sub, converter.FormatBPM(t))
	}

	clickLen := sr.N(clickLength)
	if clickLen > int(stepSamples) {
		clickLen = int(stepSamples)
	}

	barSeconds := converter.MsPerQuarter(t) * beatsPerBar / 1000
	return &ClickStreamer{
		sampleRate:  sr,
		stepSamples: stepSamples,
		stepsPerBar: int(math.Round(beatsPerBar / converter.MultiplierFor(sub))),
		clickLen:    clickLen,
		total:       int(math.Round(barSeconds * float64(bars) * float64(sr))),
	}, nil
}

// Len returns the total number of samples
func (c *ClickStreamer) Len() int {
	return c.total
}

// Stream implements beep.Streamer
func (c *ClickStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if c.pos >= c.total {
		return 0, false
	}
	for i := range samples {
		if c.pos >= c.total {
			break
		}
		v := c.sample(c.pos)
		samples[i][0] = v
		samples[i][1] = v
		c.pos++
		n++
	}
	return n, true
}

// Err implements beep.Streamer
func (c *ClickStreamer) Err() error {
	return nil
}

func (c *ClickStreamer) sample(pos int) float64 {
	step := int(float64(pos) / c.stepSamples)
	offset := float64(pos) - math.Round(float64(step)*c.stepSamples)
	if offset < 0 || offset >= float64(c.clickLen) {
		return 0
	}

	freq := clickFreq
	if step%c.stepsPerBar == 0 {
		freq = accentFreq
	}
	envelope := math.Exp(-5 * offset / float64(c.clickLen))
	return 0.8 * envelope * math.Sin(2*math.Pi*freq*offset/float64(c.sampleRate))
}

// WriteWAV encodes a click as 16-bit mono WAV
func WriteWAV(w io.WriteSeeker, t converter.Tempo, sub converter.Subdivision, bars int, sr beep.SampleRate) error {
	click, err := NewClick(t, sub, bars, sr)
	if err != nil {
		return err
	}

	format := beep.Format{SampleRate: sr, NumChannels: 1, Precision: 2}
	if err := wav.Encode(w, click, format); err != nil {
		return fmt.Errorf("failed to encode WAV: %w", err)
	}
	return nil
}
