package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/james-see/bpm2ms/pkg/api"
	"github.com/james-see/bpm2ms/pkg/audio"
	"github.com/james-see/bpm2ms/pkg/config"
	"github.com/james-see/bpm2ms/pkg/converter"
	"github.com/james-see/bpm2ms/pkg/tui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// cliApp holds flag values and state shared by all subcommands
type cliApp struct {
	configPath string
	verbose    bool

	note       string
	noTable    bool
	format     string
	bars       int
	outputFile string
	serverPort int

	settings *config.Settings
	log      *logrus.Logger
}

func (a *cliApp) setup(cmd *cobra.Command, args []string) error {
	a.log = logrus.New()
	a.log.SetOutput(cmd.ErrOrStderr())
	a.log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	a.log.SetLevel(logrus.WarnLevel)
	if a.verbose {
		a.log.SetLevel(logrus.DebugLevel)
	}

	path := a.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	settings, err := config.Load(path)
	if err != nil {
		return err
	}
	a.log.WithField("path", path).Debug("settings loaded")
	a.settings = settings
	return nil
}

func (a *cliApp) parseTempo(raw string) (converter.Tempo, error) {
	tempo, advisory, err := converter.ParseTempo(raw)
	if err != nil {
		return 0, err
	}
	if advisory != converter.AdvisoryNone {
		a.log.WithField("bpm", tempo.BPM()).Warn(advisory.String())
	}
	return tempo, nil
}

func (a *cliApp) subdivision() (converter.Subdivision, error) {
	if a.note == "" {
		return a.settings.DefaultNote, nil
	}
	return converter.ParseSubdivision(a.note)
}

func (a *cliApp) runConvert(cmd *cobra.Command, args []string) error {
	tempo, err := a.parseTempo(args[0])
	if err != nil {
		return err
	}
	sub, err := a.subdivision()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	d := converter.Convert(tempo, sub)
	a.log.WithFields(logrus.Fields{"bpm": tempo.BPM(), "note": sub.Key()}).Debug("converted")

	fmt.Fprintf(out, "%s BPM, %s\n", converter.FormatBPM(tempo), sub)
	fmt.Fprintln(out, converter.FormatDuration(d))
	if !a.noTable {
		fmt.Fprintln(out)
		fmt.Fprint(out, converter.FormatTable(converter.BuildTable(tempo)))
	}
	return nil
}

func (a *cliApp) runTable(cmd *cobra.Command, args []string) error {
	tempo, err := a.parseTempo(args[0])
	if err != nil {
		return err
	}
	return writeTable(cmd, converter.BuildTable(tempo), a.format)
}

func writeTable(cmd *cobra.Command, tbl converter.Table, format string) error {
	out := cmd.OutOrStdout()

	switch strings.ToLower(format) {
	case "", "text":
		fmt.Fprint(out, converter.FormatTable(tbl))
		return nil
	case "csv":
		return converter.WriteCSV(out, tbl)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(tbl)
	default:
		return fmt.Errorf("unknown format %q (text, csv, json)", format)
	}
}

func (a *cliApp) runClick(cmd *cobra.Command, args []string) error {
	tempo, err := a.parseTempo(args[0])
	if err != nil {
		return err
	}
	sub, err := a.subdivision()
	if err != nil {
		return err
	}

	opts := a.settings.ToClickOptions()
	if a.bars != 0 {
		opts.Bars = a.bars
	}

	output := a.outputFile
	if output == "" {
		output = fmt.Sprintf("click-%sbpm-%s.%s", converter.FormatBPM(tempo), sub.Key(), a.settings.ClickFormat)
	}

	switch strings.ToLower(filepath.Ext(output)) {
	case ".mid", ".midi":
		err = converter.WriteClickFile(output, tempo, sub, opts)
	case ".wav":
		err = writeWAVFile(output, tempo, sub, opts.Bars, beep.SampleRate(a.settings.SampleRate))
	default:
		return fmt.Errorf("cannot determine click format from %q (use .mid or .wav)", output)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bar(s) of %s at %s BPM -> %s\n", opts.Bars, sub, converter.FormatBPM(tempo), output)
	return nil
}

func writeWAVFile(path string, tempo converter.Tempo, sub converter.Subdivision, bars int, sr beep.SampleRate) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return audio.WriteWAV(f, tempo, sub, bars, sr)
}

func (a *cliApp) runTempo(cmd *cobra.Command, args []string) error {
	tempo, err := converter.ReadTempoFile(args[0])
	if err != nil {
		return err
	}
	if tempo.IsHigh() {
		a.log.WithField("bpm", tempo.BPM()).Warn(converter.AdvisoryHighTempo.String())
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Tempo: %s BPM (%s)\n\n", converter.FormatBPM(tempo), filepath.Base(args[0]))
	fmt.Fprint(out, converter.FormatTable(converter.BuildTable(tempo)))
	return nil
}

func (a *cliApp) runNotes(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-28s %-7s %s\n", "Key", "Value", "Multiplier")
	for _, s := range converter.Subdivisions() {
		fmt.Fprintf(out, "%-28s %-7s %g\n", s.Key(), s.Fraction(), converter.MultiplierFor(s))
	}
	return nil
}

func (a *cliApp) runCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	results, ok := converter.RunSanityCheck()

	fmt.Fprintln(out, "BPM Conversion Check:")
	fmt.Fprintln(out, strings.Repeat("=", 40))
	for _, r := range results {
		fmt.Fprintln(out, r)
	}
	fmt.Fprintln(out, strings.Repeat("=", 40))

	if !ok {
		fmt.Fprintln(out, "Overall Result: SOME CHECKS FAILED")
		return errors.New("conversion check failed")
	}
	fmt.Fprintln(out, "Overall Result: ALL CHECKS PASSED")
	return nil
}

func (a *cliApp) runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run(a.settings.DefaultNote)
}

func (a *cliApp) runServe(cmd *cobra.Command, args []string) error {
	port := a.serverPort
	if port == 0 {
		port = a.settings.ServerPort
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Starting API server on port %d...\n", port)
	return api.StartServer(port, api.Options{
		DefaultNote: a.settings.DefaultNote,
		Click:       a.settings.ToClickOptions(),
		Log:         a.log,
	})
}
