// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// RunOutcome is the reason a generation run stopped.
type RunOutcome string

const (
	OutcomeTargetReached  RunOutcome = "target_reached"
	OutcomeBudgetExceeded RunOutcome = "budget_exceeded"
	OutcomeInterrupted    RunOutcome = "interrupted"
	OutcomeFailed         RunOutcome = "failed"
)

// UnitFailure describes one prompt that produced no text.
type UnitFailure struct {
	Genre    string
	Strategy string
	Outcome  string
	Attempts int
	Detail   string
}

// RunSummary reports the totals of a finished run.
type RunSummary struct {
	RunID    string
	Outcome  RunOutcome
	Words    int
	Requests int
	Cost     float64

	// Generated and Failed count the units of this invocation only.
	Generated int
	Failed    int

	Elapsed time.Duration
}

// CostPerRequest is the average estimated cost of one successful request.
func (s RunSummary) CostPerRequest() float64 {
	return s.Cost / float64(max(1, s.Requests))
}

// WordsPerDollar is the corpus yield per dollar spent. Costs below a tenth
// of a cent are treated as a tenth of a cent.
func (s RunSummary) WordsPerDollar() float64 {
	return float64(s.Words) / max(0.001, s.Cost)
}
