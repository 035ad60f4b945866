package tui

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/james-see/bpm2ms/pkg/converter"
)

func typeText(m Model, text string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

func press(m Model, key tea.KeyType) Model {
	next, _ := m.Update(tea.KeyMsg{Type: key})
	return next.(Model)
}

func TestConvertOnEnter(t *testing.T) {
	m := New(converter.Quarter)
	m = typeText(m, "140")
	m = press(m, tea.KeyEnter)

	if m.err != nil {
		t.Fatalf("unexpected error: %v", m.err)
	}
	if m.result == nil {
		t.Fatal("result should be set after enter")
	}

	view := m.View()
	for _, want := range []string{"428.57 ms", "0.429 s", "One hundred twenty-eighth Note (1/128)", "13.39"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if len(m.table.Rows()) != 6 {
		t.Errorf("table has %d rows, want 6", len(m.table.Rows()))
	}
}

func TestNoteSelection(t *testing.T) {
	m := New(converter.Quarter)
	m = press(m, tea.KeyUp)
	if m.note != converter.Half {
		t.Errorf("after up: note = %v, want Half", m.note)
	}
	m = press(m, tea.KeyUp)
	m = press(m, tea.KeyUp)
	if m.note != converter.Whole {
		t.Errorf("up should stop at Whole, got %v", m.note)
	}

	m = typeText(m, "90")
	m = press(m, tea.KeyDown)
	m = press(m, tea.KeyEnter)
	if got := converter.FormatMilliseconds(m.result.Milliseconds); got != "1333.33 ms" {
		t.Errorf("90 BPM half = %s, want 1333.33 ms", got)
	}
}

func TestNoteSelectionArrows(t *testing.T) {
	m := New(converter.Quarter)
	m = typeText(m, "120")

	m = press(m, tea.KeyRight)
	if m.note != converter.Eighth {
		t.Errorf("after right: note = %v, want Eighth", m.note)
	}
	if m.input.Value() != "120" {
		t.Errorf("input = %q, arrows should not edit the BPM", m.input.Value())
	}
	for i := 0; i < 10; i++ {
		m = press(m, tea.KeyRight)
	}
	if m.note != converter.OneHundredTwentyEighth {
		t.Errorf("right should stop at 1/128, got %v", m.note)
	}

	m = press(m, tea.KeyLeft)
	m = press(m, tea.KeyEnter)
	if got := converter.FormatMilliseconds(m.result.Milliseconds); got != "31.25 ms" {
		t.Errorf("120 BPM 1/64 = %s, want 31.25 ms", got)
	}
	if !strings.Contains(m.View(), "←/→") {
		t.Error("help line should name the arrow keys")
	}
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		input string
		err   error
	}{
		{"", converter.ErrEmptyInput},
		{"abc", converter.ErrNotANumber},
		{"0", converter.ErrNonPositive},
		{"-5", converter.ErrNonPositive},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m := New(converter.Quarter)
			m = typeText(m, tt.input)
			m = press(m, tea.KeyEnter)
			if !errors.Is(m.err, tt.err) {
				t.Errorf("err = %v, want %v", m.err, tt.err)
			}
			if m.result != nil {
				t.Error("result should stay empty")
			}
		})
	}
}

func TestErrorKeepsPreviousResult(t *testing.T) {
	m := New(converter.Quarter)
	m = typeText(m, "120")
	m = press(m, tea.KeyEnter)
	m = typeText(m, "x")
	m = press(m, tea.KeyEnter)

	if m.err == nil {
		t.Fatal("expected a validation error")
	}
	if m.result == nil || m.result.Milliseconds != 500 {
		t.Error("previous result should be kept")
	}
}

func TestHighTempoWarning(t *testing.T) {
	m := New(converter.Quarter)
	m = typeText(m, "1500")
	m = press(m, tea.KeyEnter)

	if m.err != nil {
		t.Fatalf("unexpected error: %v", m.err)
	}
	if m.warning == "" {
		t.Error("expected a high tempo warning")
	}
	if !strings.Contains(m.View(), "40.00 ms") {
		t.Error("conversion should proceed despite the warning")
	}
}

func TestClear(t *testing.T) {
	m := New(converter.Quarter)
	m = typeText(m, "120")
	m = press(m, tea.KeyDown)
	m = press(m, tea.KeyEnter)
	m = press(m, tea.KeyCtrlL)

	if m.input.Value() != "" {
		t.Errorf("input = %q, want empty", m.input.Value())
	}
	if m.note != converter.Quarter {
		t.Errorf("note = %v, want Quarter", m.note)
	}
	view := m.View()
	if !strings.Contains(view, "0.00 ms") || !strings.Contains(view, "0.00 s") {
		t.Error("results should be reset to zero")
	}
}

func TestTempoLoadedMsg(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mid")
	if err := converter.WriteClickFile(path, 100, converter.Quarter, converter.DefaultClickOptions()); err != nil {
		t.Fatal(err)
	}

	m := New(converter.Eighth)
	msg := loadTempo(path)()
	next, _ := m.Update(msg)
	m = next.(Model)

	if m.input.Value() != "100" {
		t.Errorf("input = %q, want 100", m.input.Value())
	}
	if m.result == nil || converter.FormatMilliseconds(m.result.Milliseconds) != "300.00 ms" {
		t.Errorf("result = %+v, want 300 ms eighth", m.result)
	}
}

func TestTempoLoadedError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.mid")
	if err := os.WriteFile(path, []byte("junk"), 0644); err != nil {
		t.Fatal(err)
	}

	m := New(converter.Quarter)
	m.state = StateLoading
	next, _ := m.Update(loadTempo(path)())
	m = next.(Model)

	if m.state != StateInput {
		t.Errorf("state = %v, want StateInput", m.state)
	}
	if m.err == nil {
		t.Error("expected a load error")
	}
}

func TestFilePickerEscape(t *testing.T) {
	m := New(converter.Quarter)
	m = press(m, tea.KeyCtrlO)
	if m.state != StateFilePicker {
		t.Fatalf("state = %v, want StateFilePicker", m.state)
	}
	m = press(m, tea.KeyEsc)
	if m.state != StateInput {
		t.Errorf("state = %v, want StateInput", m.state)
	}
}

func TestQuit(t *testing.T) {
	m := New(converter.Quarter)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc should quit")
	}
}
