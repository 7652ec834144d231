package patient

import (
	"fmt"

	"github.com/careloop/glucoach/types"
)

// PatientState tracks the physiological and behavioral status across one
// simulated day. Created by the initial sampler at reset, mutated only by
// the dynamics, discarded at episode end.
type PatientState struct {
	// blood glucose in mg/dL
	Glucose float64
	// normalized measure of how consistently recommendations are followed
	Adherence float64
	// cumulative exercise minutes within the episode
	ExerciseMinutes float64
	// consecutive days since the last taken therapy dose
	TherapyGapDays int
	// fatigue indicator in [0, 1]
	Fatigue float64
}

var _ types.State = &PatientState{}

// Hash discretizes the state for tabular policies: glucose in 10 mg/dL
// buckets, adherence and fatigue in coarse bins, therapy gap capped at a
// week. Raw values stay available through Vector.
func (s *PatientState) Hash() string {
	gap := s.TherapyGapDays
	if gap > 7 {
		gap = 7
	}
	return fmt.Sprintf("g%d_a%d_t%d_f%d",
		int(s.Glucose/10), int(s.Adherence*10), gap, int(s.Fatigue*4))
}

func (s *PatientState) Actions() []types.Action {
	return AllActions
}

// Vector is the raw observation, ordered as declared by the
// observation space
func (s *PatientState) Vector() []float64 {
	return []float64{s.Glucose, s.Adherence, s.ExerciseMinutes, float64(s.TherapyGapDays), s.Fatigue}
}
