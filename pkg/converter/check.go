package converter

import (
	"fmt"
	"math"
)

// SanityTolerance is the allowed deviation, in milliseconds, of a sanity case
const SanityTolerance = 0.1

// SanityCase is a known tempo/subdivision pair with its expected length
type SanityCase struct {
	BPM         float64
	Subdivision Subdivision
	ExpectedMs  float64
}

// SanityResult is the outcome of one SanityCase
type SanityResult struct {
	Case   SanityCase
	GotMs  float64
	Passed bool
}

func (r SanityResult) String() string {
	status := "PASS"
	if !r.Passed {
		status = "FAIL"
	}
	return fmt.Sprintf("%g BPM %s: %.2fms (expected %gms) - %s",
		r.Case.BPM, r.Case.Subdivision, r.GotMs, r.Case.ExpectedMs, status)
}

// SanityCases returns the reference conversions used by RunSanityCheck
func SanityCases() []SanityCase {
	return []SanityCase{
		{BPM: 120, Subdivision: Quarter, ExpectedMs: 500.0},
		{BPM: 60, Subdivision: Quarter, ExpectedMs: 1000.0},
		{BPM: 120, Subdivision: Eighth, ExpectedMs: 250.0},
		{BPM: 140, Subdivision: Quarter, ExpectedMs: 428.57},
		{BPM: 90, Subdivision: Half, ExpectedMs: 1333.33},
	}
}

// RunSanityCheck converts every SanityCase and reports whether all passed
func RunSanityCheck() ([]SanityResult, bool) {
	cases := SanityCases()
	results := make([]SanityResult, 0, len(cases))
	allPassed := true

	for _, c := range cases {
		got := Convert(Tempo(c.BPM), c.Subdivision).Milliseconds
		passed := math.Abs(got-c.ExpectedMs) < SanityTolerance
		if !passed {
			allPassed = false
		}
		results = append(results, SanityResult{Case: c, GotMs: got, Passed: passed})
	}
	return results, allPassed
}
