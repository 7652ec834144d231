package patient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testRewardModel() *RewardModel {
	cfg := DefaultConfig()
	return NewRewardModel(cfg.Reward, cfg.Dynamics.TargetBand)
}

func TestGlucoseProximityMaximalInsideBand(t *testing.T) {
	r := testRewardModel()
	inBand := r.GlucoseProximity(100)

	assert.Equal(t, inBand, r.GlucoseProximity(80))
	assert.Equal(t, inBand, r.GlucoseProximity(120))
	for _, g := range []float64{60, 79, 121, 160, 300} {
		assert.Less(t, r.GlucoseProximity(g), inBand)
	}
}

func TestGlucoseProximityMonotoneInDistance(t *testing.T) {
	r := testRewardModel()

	// moving away from the band above
	prev := r.GlucoseProximity(120)
	for _, g := range []float64{130, 150, 200, 300, 400} {
		cur := r.GlucoseProximity(g)
		assert.Less(t, cur, prev)
		prev = cur
	}

	// moving away from the band below
	prev = r.GlucoseProximity(80)
	for _, g := range []float64{75, 65, 55, 45} {
		cur := r.GlucoseProximity(g)
		assert.Less(t, cur, prev)
		prev = cur
	}
}

func TestScoreAppliesTerminalPenaltyOnFailureOnly(t *testing.T) {
	r := testRewardModel()
	cfg := DefaultConfig().Reward
	state := PatientState{Glucose: 200, Adherence: 0.5}
	next := PatientState{Glucose: 255, Adherence: 0.45}

	failed := r.Score(state, RestTake, next, TerminationHyperglycemia)
	atHorizon := r.Score(state, RestTake, next, TerminationHorizon)
	running := r.Score(state, RestTake, next, TerminationNone)

	assert.InDelta(t, cfg.TerminalPenalty, atHorizon-failed, 1e-9)
	assert.Equal(t, running, atHorizon, "horizon termination carries no penalty")
}

func TestScorePenalizesExtremeActions(t *testing.T) {
	r := testRewardModel()
	cfg := DefaultConfig().Reward
	state := PatientState{Glucose: 100, Adherence: 0.6}
	next := PatientState{Glucose: 100, Adherence: 0.6}

	moderate := r.Score(state, JogTake, next, TerminationNone)
	vigorous := r.Score(state, RunTake, next, TerminationNone)
	skipped := r.Score(state, JogSkip, next, TerminationNone)

	assert.InDelta(t, cfg.ActionCost, moderate-vigorous, 1e-9)
	assert.InDelta(t, cfg.ActionCost, moderate-skipped, 1e-9)
}

func TestScoreRewardsAdherenceGains(t *testing.T) {
	r := testRewardModel()
	state := PatientState{Glucose: 100, Adherence: 0.5}
	improved := PatientState{Glucose: 100, Adherence: 0.6}
	declined := PatientState{Glucose: 100, Adherence: 0.4}

	assert.Greater(t,
		r.Score(state, JogTake, improved, TerminationNone),
		r.Score(state, JogTake, declined, TerminationNone))
}
