package converter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Formula is the human-readable conversion rule shown by the front ends
const Formula = "Milliseconds = (60,000 / BPM) × Note Value Multiplier"

// FormatMilliseconds renders ms with two decimals, e.g. "428.57 ms"
func FormatMilliseconds(ms float64) string {
	return fmt.Sprintf("%.2f ms", ms)
}

// FormatSeconds renders s with three decimals, e.g. "0.429 s"
func FormatSeconds(s float64) string {
	return fmt.Sprintf("%.3f s", s)
}

// FormatBPM renders a tempo without trailing zeros. Tempos below 1 BPM keep
// four significant digits.
func FormatBPM(t Tempo) string {
	bpm := float64(t)
	if bpm > 0 && bpm < 1 {
		return strconv.FormatFloat(bpm, 'g', 4, 64)
	}
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.3f", bpm), "0"), ".")
}

// FormatDuration produces the two-line result block for a single conversion
func FormatDuration(d Duration) string {
	return fmt.Sprintf("Milliseconds:  %s\nSeconds:       %s", FormatMilliseconds(d.Milliseconds), FormatSeconds(d.Seconds))
}

// FormatTableHeader returns the column header for FormatTable
func FormatTableHeader() string {
	return fmt.Sprintf("%-40s %14s %10s", "Note", "Milliseconds", "Seconds")
}

// FormatTable renders a table as aligned text
func FormatTable(tbl Table) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("=== All Subdivisions (1/4 to 1/128) at %s BPM ===\n", FormatBPM(tbl.Tempo)))
	b.WriteString(FormatTableHeader())
	b.WriteString("\n")
	for _, row := range tbl.Rows {
		b.WriteString(fmt.Sprintf("%-40s %14.2f %10.3f\n", row.Subdivision, row.Milliseconds, row.Seconds))
	}
	return b.String()
}

// WriteCSV writes the table with a header row
func WriteCSV(w io.Writer, tbl Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"bpm", "note", "fraction", "multiplier", "milliseconds", "seconds"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range tbl.Rows {
		record := []string{
			FormatBPM(tbl.Tempo),
			row.Subdivision.Key(),
			row.Subdivision.Fraction(),
			fmt.Sprintf("%g", MultiplierFor(row.Subdivision)),
			fmt.Sprintf("%.2f", row.Milliseconds),
			fmt.Sprintf("%.3f", row.Seconds),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
