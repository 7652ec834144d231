package types

import "encoding/json"

// Trace of an episode as transitions (state, action, result).
// The result carries the next state, reward and done flag, so one
// entry is one experience tuple.
type Trace struct {
	states  []State
	actions []Action
	results []*StepResult
}

func NewTrace() *Trace {
	return &Trace{
		states:  make([]State, 0),
		actions: make([]Action, 0),
		results: make([]*StepResult, 0),
	}
}

func (t *Trace) Append(step int, state State, action Action, result *StepResult) {
	t.states = append(t.states, state)
	t.actions = append(t.actions, action)
	t.results = append(t.results, result)
}

func (t *Trace) Len() int {
	return len(t.states)
}

func (t *Trace) Get(i int) (State, Action, *StepResult, bool) {
	if i >= len(t.states) {
		return nil, nil, nil, false
	}
	return t.states[i], t.actions[i], t.results[i], true
}

func (t *Trace) Last() (State, Action, *StepResult, bool) {
	if len(t.states) < 1 {
		return nil, nil, nil, false
	}
	lastIndex := len(t.states) - 1
	return t.states[lastIndex], t.actions[lastIndex], t.results[lastIndex], true
}

func (t *Trace) Slice(from, to int) *Trace {
	slicedTrace := NewTrace()
	for i := from; i < to; i++ {
		slicedTrace.Append(i-from, t.states[i], t.actions[i], t.results[i])
	}
	return slicedTrace
}

// TotalReward is the undiscounted sum of rewards in the trace
func (t *Trace) TotalReward() float64 {
	total := 0.0
	for _, r := range t.results {
		total += r.Reward
	}
	return total
}

func (t *Trace) Rewards() []float64 {
	rewards := make([]float64, len(t.results))
	for i, r := range t.results {
		rewards[i] = r.Reward
	}
	return rewards
}

// Cause of the episode termination, empty if the trace never terminated
func (t *Trace) Cause() string {
	_, _, last, ok := t.Last()
	if !ok || !last.Done {
		return ""
	}
	return last.Cause()
}

type traceStep struct {
	State  []float64 `json:"state"`
	Action string    `json:"action"`
	Next   []float64 `json:"next"`
	Reward float64   `json:"reward"`
	Done   bool      `json:"done"`
}

func (t *Trace) MarshalJSON() ([]byte, error) {
	steps := make([]traceStep, len(t.states))
	for i := range t.states {
		steps[i] = traceStep{
			State:  t.states[i].Vector(),
			Action: t.actions[i].Hash(),
			Next:   t.results[i].Observation.Vector(),
			Reward: t.results[i].Reward,
			Done:   t.results[i].Done,
		}
	}
	return json.Marshal(steps)
}
