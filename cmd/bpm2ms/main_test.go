package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/james-see/bpm2ms/pkg/converter"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer

	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "settings.json")}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestConvertCommand(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"convert", "120"}, []string{"Quarter Note (1/4)", "500.00 ms", "0.500 s"}},
		{[]string{"convert", "60", "-n", "quarter"}, []string{"1000.00 ms", "1.000 s"}},
		{[]string{"convert", "120", "-n", "1/8"}, []string{"Eighth Note (1/8)", "250.00 ms", "0.250 s"}},
		{[]string{"convert", "140"}, []string{"428.57 ms", "0.429 s"}},
		{[]string{"convert", "90", "--note", "half"}, []string{"1333.33 ms", "1.333 s"}},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, _, err := runCLI(t, tt.args...)
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			if !strings.Contains(out, "All Subdivisions") {
				t.Error("table should be printed by default")
			}
		})
	}
}

func TestConvertNoTable(t *testing.T) {
	out, _, err := runCLI(t, "convert", "120", "--no-table")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out, "All Subdivisions") {
		t.Error("--no-table should suppress the table")
	}
}

func TestConvertValidation(t *testing.T) {
	tests := []struct {
		args []string
		err  error
	}{
		{[]string{"convert", " "}, converter.ErrEmptyInput},
		{[]string{"convert", "abc"}, converter.ErrNotANumber},
		{[]string{"convert", "0"}, converter.ErrNonPositive},
		{[]string{"convert", "--", "-5"}, converter.ErrNonPositive},
		{[]string{"convert", "120", "-n", "Quater"}, converter.ErrUnknownSubdivision},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			if !errors.Is(err, tt.err) {
				t.Errorf("error = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestHighTempoWarnsAndProceeds(t *testing.T) {
	out, stderr, err := runCLI(t, "convert", "1500")
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if !strings.Contains(stderr, "very high BPM") {
		t.Errorf("stderr should carry the warning, got %q", stderr)
	}
	if !strings.Contains(out, "40.00 ms") {
		t.Errorf("conversion should proceed, got:\n%s", out)
	}
}

func TestTableFormats(t *testing.T) {
	out, _, err := runCLI(t, "table", "120", "--format", "csv")
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) != 7 {
		t.Errorf("csv has %d lines, want 7", len(lines))
	}

	out, _, err = runCLI(t, "table", "120", "-f", "json")
	if err != nil {
		t.Fatal(err)
	}
	var tbl converter.Table
	if err := json.Unmarshal([]byte(out), &tbl); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(tbl.Rows) != 6 || tbl.Rows[0].Subdivision != converter.Quarter || tbl.Rows[0].Milliseconds != 500 {
		t.Errorf("unexpected table: %+v", tbl)
	}

	if _, _, err := runCLI(t, "table", "120", "-f", "xml"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestClickCommand(t *testing.T) {
	dir := t.TempDir()

	midPath := filepath.Join(dir, "click.mid")
	out, _, err := runCLI(t, "click", "128", "-n", "16", "--bars", "2", "-o", midPath)
	if err != nil {
		t.Fatalf("click .mid error = %v", err)
	}
	if !strings.Contains(out, "2 bar(s)") {
		t.Errorf("unexpected output: %s", out)
	}
	tempo, err := converter.ReadTempoFile(midPath)
	if err != nil {
		t.Fatal(err)
	}
	if tempo.BPM() < 127.99 || tempo.BPM() > 128.01 {
		t.Errorf("tempo in file = %v, want 128", tempo)
	}

	wavPath := filepath.Join(dir, "click.wav")
	if _, _, err := runCLI(t, "click", "120", "-o", wavPath); err != nil {
		t.Fatalf("click .wav error = %v", err)
	}
	info, err := os.Stat(wavPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() < 44 {
		t.Errorf("wav file too small: %d bytes", info.Size())
	}

	if _, _, err := runCLI(t, "click", "120", "-o", filepath.Join(dir, "click.mp3")); err == nil {
		t.Error("unsupported extension should fail")
	}

	lowPath := filepath.Join(dir, "slow.mid")
	if _, _, err := runCLI(t, "click", "2", "-o", lowPath); !errors.Is(err, converter.ErrTempoOutOfRange) {
		t.Errorf("click at 2 BPM error = %v, want ErrTempoOutOfRange", err)
	}
	if _, err := os.Stat(lowPath); !os.IsNotExist(err) {
		t.Error("no file should be written for an out of range tempo")
	}
}

func TestTempoCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mid")
	if err := converter.WriteClickFile(path, 75, converter.Quarter, converter.DefaultClickOptions()); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, "tempo", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Tempo: 75 BPM") || !strings.Contains(out, "800.00") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestCheckCommand(t *testing.T) {
	out, _, err := runCLI(t, "check")
	if err != nil {
		t.Fatalf("check failed: %v\n%s", err, out)
	}
	if strings.Count(out, "- PASS") != 5 {
		t.Errorf("expected 5 passing cases:\n%s", out)
	}
	if !strings.Contains(out, "ALL CHECKS PASSED") {
		t.Error("missing overall result")
	}
}

func TestNotesCommand(t *testing.T) {
	out, _, err := runCLI(t, "notes")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"whole", "1/128", "0.03125"} {
		if !strings.Contains(out, want) {
			t.Errorf("notes output missing %q", want)
		}
	}
}

func TestSettingsDefaultNote(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"default_note": "eighth"}`), 0644); err != nil {
		t.Fatal(err)
	}

	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "convert", "120", "--no-table"})
	if err := cmd.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout.String(), "250.00 ms") {
		t.Errorf("default note from settings not applied:\n%s", stdout.String())
	}
}
