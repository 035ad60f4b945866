package api

import "github.com/james-see/bpm2ms/pkg/converter"

// ErrorResponse is returned with every 4xx/5xx status
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// SubdivisionResponse describes one note value
type SubdivisionResponse struct {
	Note       string  `json:"note"`
	Label      string  `json:"label"`
	Fraction   string  `json:"fraction"`
	Multiplier float64 `json:"multiplier"`
}

// Display holds the rounded strings shown to users
type Display struct {
	Milliseconds string `json:"ms"`
	Seconds      string `json:"s"`
}

// ConvertResponse is the body of GET /api/v1/convert
type ConvertResponse struct {
	BPM float64 `json:"bpm"`
	SubdivisionResponse
	Milliseconds float64  `json:"milliseconds"`
	Seconds      float64  `json:"seconds"`
	Display      Display  `json:"display"`
	Warnings     []string `json:"warnings"`
}

// RowResponse is one line of a TableResponse
type RowResponse struct {
	SubdivisionResponse
	Milliseconds float64 `json:"milliseconds"`
	Seconds      float64 `json:"seconds"`
	Display      Display `json:"display"`
}

// TableResponse is the body of GET /api/v1/table and POST /api/v1/tempo
type TableResponse struct {
	BPM      float64       `json:"bpm"`
	Rows     []RowResponse `json:"rows"`
	Warnings []string      `json:"warnings"`
}

func newSubdivisionResponse(s converter.Subdivision) SubdivisionResponse {
	return SubdivisionResponse{
		Note:       s.Key(),
		Label:      s.String(),
		Fraction:   s.Fraction(),
		Multiplier: converter.MultiplierFor(s),
	}
}

func newDisplay(d converter.Duration) Display {
	return Display{
		Milliseconds: converter.FormatMilliseconds(d.Milliseconds),
		Seconds:      converter.FormatSeconds(d.Seconds),
	}
}

func newTableResponse(tbl converter.Table, warnings []string) TableResponse {
	rows := make([]RowResponse, 0, len(tbl.Rows))
	for _, d := range tbl.Rows {
		rows = append(rows, RowResponse{
			SubdivisionResponse: newSubdivisionResponse(d.Subdivision),
			Milliseconds:        d.Milliseconds,
			Seconds:             d.Seconds,
			Display:             newDisplay(d),
		})
	}
	if warnings == nil {
		warnings = []string{}
	}
	return TableResponse{BPM: tbl.Tempo.BPM(), Rows: rows, Warnings: warnings}
}
