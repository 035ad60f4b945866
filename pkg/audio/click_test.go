package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/james-see/bpm2ms/pkg/converter"
)

func drain(s beep.Streamer) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
	}
}

func TestClickLength(t *testing.T) {
	tests := []struct {
		bpm  float64
		bars int
		want int
	}{
		{120, 1, 8000},
		{60, 2, 32000},
		{240, 1, 4000},
	}

	for _, tt := range tests {
		click, err := NewClick(converter.Tempo(tt.bpm), converter.Quarter, tt.bars, 4000)
		if err != nil {
			t.Fatalf("NewClick() error = %v", err)
		}
		if click.Len() != tt.want {
			t.Errorf("Len() = %d, want %d", click.Len(), tt.want)
		}
		if got := len(drain(click)); got != tt.want {
			t.Errorf("streamed %d samples, want %d", got, tt.want)
		}
	}
}

func TestClickPlacement(t *testing.T) {
	// 120 BPM eighths at 8 kHz: one click every 2000 samples
	click, err := NewClick(120, converter.Eighth, 1, 8000)
	if err != nil {
		t.Fatalf("NewClick() error = %v", err)
	}
	samples := drain(click)

	for _, start := range []int{0, 2000, 4000, 14000} {
		if samples[start+1][0] == 0 {
			t.Errorf("expected a click right after sample %d", start)
		}
	}
	for _, silent := range []int{1000, 3000, 15999} {
		if samples[silent][0] != 0 {
			t.Errorf("sample %d should be silent, got %v", silent, samples[silent][0])
		}
	}
	for _, s := range samples {
		if s[0] > 1 || s[0] < -1 {
			t.Fatalf("sample out of range: %v", s[0])
		}
	}
}

func TestNewClickErrors(t *testing.T) {
	if _, err := NewClick(120, converter.Quarter, 0, DefaultSampleRate); err == nil {
		t.Error("zero bars should fail")
	}
	if _, err := NewClick(120, converter.Quarter, 1, 0); err == nil {
		t.Error("zero sample rate should fail")
	}
	if _, err := NewClick(1e9, converter.OneHundredTwentyEighth, 1, 100); err == nil {
		t.Error("sub-sample step should fail")
	}
}

func TestWriteWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "click.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteWAV(f, 120, converter.Sixteenth, 2, 8000); err != nil {
		t.Fatalf("WriteWAV() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	in, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	streamer, format, err := wav.Decode(in)
	if err != nil {
		t.Fatalf("wav.Decode() error = %v", err)
	}
	defer streamer.Close()

	if format.SampleRate != 8000 || format.NumChannels != 1 {
		t.Errorf("format = %+v, want 8000 Hz mono", format)
	}
	if streamer.Len() != 32000 {
		t.Errorf("decoded length = %d, want 32000", streamer.Len())
	}
}
