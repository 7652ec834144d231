package patient

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDynamics() *Dynamics {
	return NewDynamics(DefaultConfig().Dynamics)
}

func TestAdvanceKeepsDeclaredBounds(t *testing.T) {
	d := testDynamics()
	cfg := DefaultConfig().Dynamics

	glucoses := []float64{40, 55, 80, 120, 180, 250, 400}
	adherences := []float64{0, 0.3, 0.7, 1}
	fatigues := []float64{0, 0.5, 1}
	gaps := []int{0, 2, 6}

	for _, g := range glucoses {
		for _, adh := range adherences {
			for _, f := range fatigues {
				for _, gap := range gaps {
					state := PatientState{Glucose: g, Adherence: adh, Fatigue: f, TherapyGapDays: gap}
					for _, a := range AllActions {
						next, _ := d.Advance(state, a.(*CareAction))
						require.False(t, math.IsNaN(next.Glucose), "glucose must never be NaN")
						require.False(t, math.IsNaN(next.Adherence), "adherence must never be NaN")
						assert.GreaterOrEqual(t, next.Glucose, cfg.GlucoseBounds.Low)
						assert.LessOrEqual(t, next.Glucose, cfg.GlucoseBounds.High)
						assert.GreaterOrEqual(t, next.Adherence, 0.0)
						assert.LessOrEqual(t, next.Adherence, 1.0)
						assert.GreaterOrEqual(t, next.Fatigue, 0.0)
						assert.LessOrEqual(t, next.Fatigue, 1.0)
					}
				}
			}
		}
	}
}

func TestAdvanceIsPure(t *testing.T) {
	d := testDynamics()
	state := PatientState{Glucose: 140, Adherence: 0.6, Fatigue: 0.2, TherapyGapDays: 1}

	first, firstCause := d.Advance(state, JogTake)
	second, secondCause := d.Advance(state, JogTake)

	require.Equal(t, first, second)
	require.Equal(t, firstCause, secondCause)
}

func TestSkippedTherapyCompounds(t *testing.T) {
	d := testDynamics()

	state := PatientState{Glucose: 150, Adherence: 0.6}
	prevRise := 0.0
	for day := 0; day < 4; day++ {
		next, _ := d.Advance(state, RestSkip)
		rise := next.Glucose - state.Glucose
		assert.Greater(t, rise, prevRise, "the skip penalty must grow with consecutive skipped days")
		prevRise = rise
		state = next
	}
	assert.Equal(t, 4, state.TherapyGapDays)
}

func TestTherapyResetsGap(t *testing.T) {
	d := testDynamics()
	state := PatientState{Glucose: 150, Adherence: 0.6, TherapyGapDays: 4}

	next, _ := d.Advance(state, JogTake)
	assert.Equal(t, 0, next.TherapyGapDays)
}

func TestAdherenceDecaysWithoutReinforcement(t *testing.T) {
	d := testDynamics()

	state := PatientState{Glucose: 100, Adherence: 0.8}
	for day := 0; day < 5; day++ {
		next, _ := d.Advance(state, RestSkip)
		assert.Less(t, next.Adherence, state.Adherence)
		state = next
	}
}

func TestAdherenceRecoversOnCompletedRecommendation(t *testing.T) {
	d := testDynamics()
	state := PatientState{Glucose: 100, Adherence: 0.3}

	next, _ := d.Advance(state, JogTake)
	assert.Greater(t, next.Adherence, state.Adherence)
}

func TestExerciseMinutesAccumulate(t *testing.T) {
	d := testDynamics()

	state := PatientState{Glucose: 100, Adherence: 0.8}
	total := 0.0
	for _, a := range []*CareAction{WalkTake, JogTake, RestTake, RunTake} {
		next, _ := d.Advance(state, a)
		total += a.Exercise.Minutes()
		assert.GreaterOrEqual(t, next.ExerciseMinutes, state.ExerciseMinutes)
		assert.Equal(t, total, next.ExerciseMinutes)
		state = next
	}
}

func TestFailureCauses(t *testing.T) {
	d := testDynamics()

	// 56 + drift 4 - jog effect 12 + first skip penalty 3 = 51 <= 55
	next, cause := d.Advance(PatientState{Glucose: 56, Adherence: 1}, JogSkip)
	assert.Equal(t, TerminationHypoglycemia, cause)
	assert.LessOrEqual(t, next.Glucose, 55.0)

	// 245 + drift 4 + rest bump 3 + first skip penalty 3 = 255 >= 250
	_, cause = d.Advance(PatientState{Glucose: 245, Adherence: 0.6}, RestSkip)
	assert.Equal(t, TerminationHyperglycemia, cause)

	// vigorous effort while exhausted erodes the last of the adherence
	_, cause = d.Advance(PatientState{Glucose: 100, Adherence: 0.05, Fatigue: 0.9}, RunSkip)
	assert.Equal(t, TerminationAdherenceCollapse, cause)

	_, cause = d.Advance(PatientState{Glucose: 100, Adherence: 0.8}, JogTake)
	assert.Equal(t, TerminationNone, cause)
}

func TestFailureTermination(t *testing.T) {
	assert.True(t, FailureTermination(TerminationHypoglycemia))
	assert.True(t, FailureTermination(TerminationHyperglycemia))
	assert.True(t, FailureTermination(TerminationAdherenceCollapse))
	assert.False(t, FailureTermination(TerminationHorizon))
	assert.False(t, FailureTermination(TerminationNone))
}
