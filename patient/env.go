package patient

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/careloop/glucoach/types"
)

// CareEnvironment composes the patient model, dynamics and reward into
// the standard reset/step interface. Lifecycle:
// uninitialized -> ready (reset) -> ready (step, done=false)
// -> terminal (done=true). Stepping outside ready fails with
// InvalidStateError.
type CareEnvironment struct {
	cfg      *Config
	dynamics *Dynamics
	reward   *RewardModel
	rng      *rand.Rand

	state *PatientState
	steps int
	phase types.Phase

	obsSpace *types.BoxSpace
	actSpace *types.DiscreteSpace
}

var _ types.Environment = &CareEnvironment{}

// NewCareEnvironment validates the configuration and builds the
// environment. Configuration errors surface here, never mid-episode.
func NewCareEnvironment(cfg *Config) (*CareEnvironment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid environment config: %w", err)
	}
	maxMinutes := VigorousRun.Minutes() * float64(cfg.Horizon)
	return &CareEnvironment{
		cfg:      cfg,
		dynamics: NewDynamics(cfg.Dynamics),
		reward:   NewRewardModel(cfg.Reward, cfg.Dynamics.TargetBand),
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		phase:    types.PhaseUninitialized,
		obsSpace: &types.BoxSpace{
			Low:  []float64{cfg.Dynamics.GlucoseBounds.Low, 0, 0, 0, 0},
			High: []float64{cfg.Dynamics.GlucoseBounds.High, 1, maxMinutes, float64(cfg.Horizon), 1},
		},
		actSpace: types.NewDiscreteSpace(AllActions...),
	}, nil
}

func (e *CareEnvironment) ObservationSpace() *types.BoxSpace {
	return e.obsSpace
}

func (e *CareEnvironment) ActionSpace() *types.DiscreteSpace {
	return e.actSpace
}

// Reset samples a fresh initial state and starts a new episode. When the
// episode context carries a seed the random stream is reseeded first, so
// equal seeds yield bit-identical initial states.
func (e *CareEnvironment) Reset(ec *types.EpisodeContext) (types.State, error) {
	if ec != nil && ec.Seed != nil {
		e.rng = rand.New(rand.NewSource(*ec.Seed))
	}
	e.state = e.sampleInitialState()
	e.steps = 0
	e.phase = types.PhaseReady
	return e.state, nil
}

// sampleInitialState draws from the configured initial distribution and
// returns a fresh state, never aliasing previously issued ones
func (e *CareEnvironment) sampleInitialState() *PatientState {
	return &PatientState{
		Glucose:   uniform(e.rng, e.cfg.Initial.GlucoseRange),
		Adherence: uniform(e.rng, e.cfg.Initial.AdherenceRange),
	}
}

// Step advances the patient by one day
func (e *CareEnvironment) Step(a types.Action, _ *types.StepContext) (*types.StepResult, error) {
	if e.phase != types.PhaseReady {
		return nil, &types.InvalidStateError{Op: "step", Phase: e.phase}
	}
	care, ok := a.(*CareAction)
	if !ok || !e.actSpace.Contains(a) {
		return nil, &types.InvalidActionError{Action: a}
	}

	next, cause := e.dynamics.Advance(*e.state, care)
	e.steps++
	done := cause != TerminationNone
	if !done && e.steps >= e.cfg.Horizon {
		// the horizon terminates the episode even when the dynamics do not
		done = true
		cause = TerminationHorizon
	}
	reward := e.reward.Score(*e.state, care, next, cause)

	e.state = &next
	if done {
		e.phase = types.PhaseTerminal
	}

	observation := next
	return &types.StepResult{
		Observation: &observation,
		Reward:      reward,
		Done:        done,
		Info: map[string]interface{}{
			types.InfoKeyCause: cause,
			"action":           care.Hash(),
			"step":             e.steps,
			"glucose":          next.Glucose,
			"adherence":        next.Adherence,
			"fatigue":          next.Fatigue,
		},
	}, nil
}

func uniform(rng *rand.Rand, r Range) float64 {
	if r.High == r.Low {
		return r.Low
	}
	return r.Low + rng.Float64()*(r.High-r.Low)
}
