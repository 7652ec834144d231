package types

import (
	"time"

	"golang.org/x/exp/rand"
)

// Policy maps observed states to actions and learns from experience.
// The training loop depends only on this interface; concrete variants
// (tabular, softmax, linear) live in the policies package.
type Policy interface {
	// NextAction selects among the available actions from the state
	NextAction(step int, state State, actions []Action) (Action, bool)
	// Update consumes a single transition
	Update(step int, state State, action Action, result *StepResult)
	// UpdateEpisode consumes a batch of completed episode traces.
	// An error here is fatal to the training run.
	UpdateEpisode(episode int, batch []*Trace) error
	// SetExploration adjusts the explore/exploit trade-off.
	// Zero selects greedily, for deterministic evaluation runs.
	SetExploration(rate float64)
	// Reset clears the learned parameters
	Reset()
	// Record serializes the policy parameters to a versioned artifact
	Record(path string) error
}

// RandomPolicy picks uniformly among the available actions.
// Baseline for comparisons.
type RandomPolicy struct {
	rand *rand.Rand
}

var _ Policy = &RandomPolicy{}

func NewRandomPolicy() *RandomPolicy {
	return &RandomPolicy{
		rand: rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
	}
}

func (r *RandomPolicy) NextAction(step int, state State, actions []Action) (Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	i := r.rand.Intn(len(actions))
	return actions[i], true
}

func (r *RandomPolicy) Update(_ int, _ State, _ Action, _ *StepResult) {}

func (r *RandomPolicy) UpdateEpisode(_ int, _ []*Trace) error {
	return nil
}

func (r *RandomPolicy) SetExploration(_ float64) {}

func (r *RandomPolicy) Reset() {}

// Record is a no-op: a random policy has no parameters worth persisting
func (r *RandomPolicy) Record(_ string) error {
	return nil
}
