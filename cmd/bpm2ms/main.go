// Package main is the entry point for the bpm2ms CLI
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	app := &cliApp{}

	root := &cobra.Command{
		Use:   "bpm2ms",
		Short: "Convert a tempo in BPM to note durations",
		Long: `bpm2ms converts a tempo in beats per minute to the length of a note value
in milliseconds and seconds, from a whole note down to a 1/128 note.

  Milliseconds = (60,000 / BPM) × Note Value Multiplier

Examples:
  bpm2ms convert 120
  bpm2ms convert 140 -n eighth
  bpm2ms table 90 --format csv
  bpm2ms click 128 -n 1/16 --bars 4 -o click.mid
  bpm2ms tempo song.mid
  bpm2ms check
  bpm2ms tui
  bpm2ms serve --port 8080`,
		Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: app.setup,
	}

	// Global flags
	root.PersistentFlags().StringVar(&app.configPath, "config", "", "Settings file (default: user config dir)")
	root.PersistentFlags().BoolVar(&app.verbose, "verbose", false, "Verbose logging")

	// convert command
	convertCmd := &cobra.Command{
		Use:   "convert <bpm>",
		Short: "Convert BPM to the duration of one note value",
		Args:  cobra.ExactArgs(1),
		RunE:  app.runConvert,
	}
	convertCmd.Flags().StringVarP(&app.note, "note", "n", "", "Note value: key (eighth), fraction (1/8) or denominator (8)")
	convertCmd.Flags().BoolVar(&app.noTable, "no-table", false, "Only print the selected note value")

	// table command
	tableCmd := &cobra.Command{
		Use:   "table <bpm>",
		Short: "Print durations for every note value from 1/4 to 1/128",
		Args:  cobra.ExactArgs(1),
		RunE:  app.runTable,
	}
	tableCmd.Flags().StringVarP(&app.format, "format", "f", "text", "Output format (text, csv, json)")

	// click command
	clickCmd := &cobra.Command{
		Use:   "click <bpm>",
		Short: "Write a click track (.mid or .wav) at the given tempo",
		Args:  cobra.ExactArgs(1),
		RunE:  app.runClick,
	}
	clickCmd.Flags().StringVarP(&app.note, "note", "n", "", "Note value to click on")
	clickCmd.Flags().IntVar(&app.bars, "bars", 0, "Number of 4/4 bars (default from settings)")
	clickCmd.Flags().StringVarP(&app.outputFile, "output", "o", "", "Output file path, .mid or .wav")

	// tempo command
	tempoCmd := &cobra.Command{
		Use:   "tempo <file.mid>",
		Short: "Read the tempo of a MIDI file and print its note durations",
		Args:  cobra.ExactArgs(1),
		RunE:  app.runTempo,
	}

	notesCmd := &cobra.Command{
		Use:   "notes",
		Short: "List supported note values",
		Args:  cobra.NoArgs,
		RunE:  app.runNotes,
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Verify the conversion against known reference values",
		Args:  cobra.NoArgs,
		RunE:  app.runCheck,
	}

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Launch interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE:  app.runTUI,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Args:  cobra.NoArgs,
		RunE:  app.runServe,
	}
	serveCmd.Flags().IntVarP(&app.serverPort, "port", "p", 0, "Server port (default from settings)")

	root.AddCommand(convertCmd, tableCmd, clickCmd, tempoCmd, notesCmd, checkCmd, tuiCmd, serveCmd)
	return root
}
