package types

import "math"

// key under which environments report the termination cause in StepResult.Info
const InfoKeyCause = "cause"

// A simulated environment explored by the RL agent.
// One environment owns exactly one in-flight episode at a time.
type Environment interface {
	// Reset starts a new episode and returns the initial state
	Reset(*EpisodeContext) (State, error)
	// Step applies an action and returns the resulting transition
	// Fails with InvalidStateError outside a running episode and
	// with InvalidActionError for actions outside the action space
	Step(Action, *StepContext) (*StepResult, error)
	// Static descriptor of the observation bounds
	ObservationSpace() *BoxSpace
	// Static descriptor of the available actions
	ActionSpace() *DiscreteSpace
}

// State of the environment that policies observe
type State interface {
	// Indexed by the Hash
	// Should be deterministic
	Hash() string
	// Actions possible from the state
	Actions() []Action
	// Raw numeric observation, ordered as declared by the observation space
	Vector() []float64
}

// An Action that a policy can take
type Action interface {
	// Index of the action
	// Should be deterministic
	Hash() string
}

// StepResult is the outcome of a single environment step
type StepResult struct {
	Observation State
	Reward      float64
	Done        bool
	// diagnostic fields, never used for learning
	Info map[string]interface{}
}

// Cause reported by the environment for this step, empty if none
func (r *StepResult) Cause() string {
	if r.Info == nil {
		return ""
	}
	if c, ok := r.Info[InfoKeyCause].(string); ok {
		return c
	}
	return ""
}

// BoxSpace describes a bounded numeric observation vector
type BoxSpace struct {
	Low  []float64
	High []float64
}

func (b *BoxSpace) Dim() int {
	return len(b.Low)
}

func (b *BoxSpace) Contains(v []float64) bool {
	if len(v) != len(b.Low) {
		return false
	}
	for i, x := range v {
		if math.IsNaN(x) || x < b.Low[i] || x > b.High[i] {
			return false
		}
	}
	return true
}

// DiscreteSpace describes a finite action set
type DiscreteSpace struct {
	actions []Action
	index   map[string]int
}

func NewDiscreteSpace(actions ...Action) *DiscreteSpace {
	index := make(map[string]int, len(actions))
	for i, a := range actions {
		index[a.Hash()] = i
	}
	return &DiscreteSpace{
		actions: actions,
		index:   index,
	}
}

func (d *DiscreteSpace) N() int {
	return len(d.actions)
}

func (d *DiscreteSpace) Actions() []Action {
	return d.actions
}

func (d *DiscreteSpace) Contains(a Action) bool {
	_, ok := d.index[a.Hash()]
	return ok
}
