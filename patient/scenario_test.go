package patient

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careloop/glucoach/types"
)

// scenarioConfig pins the initial distribution so rollouts are exact
func scenarioConfig() *Config {
	cfg := DefaultConfig()
	cfg.Horizon = 7
	cfg.Initial.GlucoseRange = Range{Low: 180, High: 180}
	cfg.Initial.AdherenceRange = Range{Low: 0.6, High: 0.6}
	return cfg
}

// A patient starting above the target band who rests and skips therapy
// every day: adherence decays daily and the episode ends early with a
// large negative terminal reward.
func TestSedentarySkippingWeek(t *testing.T) {
	env := newTestEnv(t, scenarioConfig())
	state, err := env.Reset(seededContext(1))
	require.NoError(t, err)

	adherence := state.Vector()[1]
	steps := 0
	var last *types.StepResult
	for {
		result, err := env.Step(RestSkip, nil)
		require.NoError(t, err)
		steps++

		next := result.Observation.Vector()
		assert.Less(t, next[1], adherence, "adherence must decay every sedentary day")
		adherence = next[1]

		last = result
		if result.Done {
			break
		}
		require.Less(t, steps, 7, "the episode must terminate before the full week")
	}

	assert.Less(t, steps, 7)
	assert.Equal(t, TerminationHyperglycemia, last.Cause())
	assert.Less(t, last.Reward, -5.0, "unsafe exit must carry a large negative reward")
}

// A patient starting above the target band who follows the moderate
// routine with therapy: glucose converges into the target band by day
// four and the episode runs the full week with positive total reward.
func TestConsistentRoutineWeek(t *testing.T) {
	cfg := scenarioConfig()
	env := newTestEnv(t, cfg)
	_, err := env.Reset(seededContext(1))
	require.NoError(t, err)

	target := cfg.Dynamics.TargetBand
	total := 0.0
	for step := 1; step <= 7; step++ {
		result, err := env.Step(JogTake, nil)
		require.NoError(t, err)
		total += result.Reward

		glucose := result.Observation.Vector()[0]
		if step >= 4 {
			assert.True(t, target.Contains(glucose),
				"glucose %v must be inside the target band from day 4, day %d", glucose, step)
		}
		if step < 7 {
			require.False(t, result.Done)
		} else {
			require.True(t, result.Done)
			assert.Equal(t, TerminationHorizon, result.Cause())
		}
	}

	assert.Greater(t, total, 0.0, "a consistent week must accumulate positive reward")
}
