// Package result assembles the per-round result records handed to the
// result store.
package result

import (
	"github.com/qnetlab/qne-adk/pkg/simlog"
)

// Result is the outcome of one round of an application run. Its JSON shape
// is a contract with the result store and the frontends reading it.
type Result struct {
	RoundNumber      int                  `json:"round_number"`
	RoundSet         string               `json:"round_set"`
	RoundResult      any                  `json:"round_result"`
	Instructions     []simlog.Instruction `json:"instructions"`
	CumulativeResult map[string]any       `json:"cumulative_result"`
}

// RoundError describes why a round failed.
type RoundError struct {
	Exception string `json:"exception"`
	Message   string `json:"message"`
	Trace     string `json:"trace"`
}

// Generate assembles a success Result. Inputs are taken as-is; correctness
// is the caller's responsibility.
func Generate(roundSet string, roundNumber int, roundResult any,
	instructions []simlog.Instruction, cumulativeResult map[string]any) *Result {
	if instructions == nil {
		instructions = []simlog.Instruction{}
	}
	if cumulativeResult == nil {
		cumulativeResult = map[string]any{}
	}
	return &Result{
		RoundNumber:      roundNumber,
		RoundSet:         roundSet,
		RoundResult:      roundResult,
		Instructions:     instructions,
		CumulativeResult: cumulativeResult,
	}
}

// GenerateError assembles the Result shape for a failed round: the error
// details take the place of the round result and the instruction list is
// empty.
func GenerateError(roundSet string, roundNumber int, exception, message, trace string) *Result {
	return &Result{
		RoundNumber: roundNumber,
		RoundSet:    roundSet,
		RoundResult: map[string]any{
			"error": RoundError{
				Exception: exception,
				Message:   message,
				Trace:     trace,
			},
		},
		Instructions:     []simlog.Instruction{},
		CumulativeResult: map[string]any{},
	}
}
