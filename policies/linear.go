package policies

import (
	"fmt"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/careloop/glucoach/types"
)

// LinearQ approximates action values as a linear function of normalized
// state features, one weight vector per action. It learns from batches
// of completed episodes with a semi-gradient TD sweep.
type LinearQ struct {
	weights  map[string]*mat.VecDense
	low      []float64
	high     []float64
	alpha    float64
	discount float64
	epsilon  float64
	rand     *rand.Rand
}

var _ types.Policy = &LinearQ{}

func NewLinearQ(alpha, discount, epsilon float64, space *types.BoxSpace) *LinearQ {
	return NewLinearQSeeded(alpha, discount, epsilon, space, uint64(time.Now().UnixNano()))
}

func NewLinearQSeeded(alpha, discount, epsilon float64, space *types.BoxSpace, seed uint64) *LinearQ {
	low := make([]float64, len(space.Low))
	high := make([]float64, len(space.High))
	copy(low, space.Low)
	copy(high, space.High)
	return &LinearQ{
		weights:  make(map[string]*mat.VecDense),
		low:      low,
		high:     high,
		alpha:    alpha,
		discount: discount,
		epsilon:  epsilon,
		rand:     rand.New(rand.NewSource(seed)),
	}
}

// dim is the feature dimension: one bias term plus one normalized
// feature per observation component
func (l *LinearQ) dim() int {
	return len(l.low) + 1
}

func (l *LinearQ) features(state types.State) *mat.VecDense {
	v := state.Vector()
	features := mat.NewVecDense(l.dim(), nil)
	features.SetVec(0, 1)
	for i, x := range v {
		span := l.high[i] - l.low[i]
		if span <= 0 {
			features.SetVec(i+1, 0)
			continue
		}
		features.SetVec(i+1, (x-l.low[i])/span)
	}
	return features
}

func (l *LinearQ) weightsFor(action string) *mat.VecDense {
	w, ok := l.weights[action]
	if !ok {
		w = mat.NewVecDense(l.dim(), nil)
		l.weights[action] = w
	}
	return w
}

func (l *LinearQ) value(features *mat.VecDense, action string) float64 {
	return mat.Dot(l.weightsFor(action), features)
}

func (l *LinearQ) maxValue(state types.State) float64 {
	features := l.features(state)
	best := 0.0
	for i, a := range state.Actions() {
		v := l.value(features, a.Hash())
		if i == 0 || v > best {
			best = v
		}
	}
	return best
}

func (l *LinearQ) NextAction(step int, state types.State, actions []types.Action) (types.Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	if l.rand.Float64() < l.epsilon {
		return actions[l.rand.Intn(len(actions))], true
	}
	features := l.features(state)
	var bestAction types.Action
	bestVal := 0.0
	for i, a := range actions {
		v := l.value(features, a.Hash())
		if i == 0 || v > bestVal {
			bestVal = v
			bestAction = a
		}
	}
	return bestAction, true
}

// Update is a no-op: the approximator learns from episode batches
func (l *LinearQ) Update(_ int, _ types.State, _ types.Action, _ *types.StepResult) {}

// UpdateEpisode performs one semi-gradient TD sweep over the batch
func (l *LinearQ) UpdateEpisode(episode int, batch []*types.Trace) error {
	if len(batch) == 0 {
		return fmt.Errorf("empty experience batch")
	}
	for _, trace := range batch {
		if trace == nil {
			return fmt.Errorf("nil trace in experience batch")
		}
		for i := 0; i < trace.Len(); i++ {
			state, action, result, ok := trace.Get(i)
			if !ok {
				break
			}
			target := result.Reward
			if !result.Done {
				target += l.discount * l.maxValue(result.Observation)
			}
			features := l.features(state)
			w := l.weightsFor(action.Hash())
			delta := target - mat.Dot(w, features)
			w.AddScaledVec(w, l.alpha*delta, features)
		}
	}
	return nil
}

func (l *LinearQ) SetExploration(rate float64) {
	l.epsilon = rate
}

func (l *LinearQ) Reset() {
	l.weights = make(map[string]*mat.VecDense)
}

type linearParams struct {
	Low     []float64            `json:"low"`
	High    []float64            `json:"high"`
	Weights map[string][]float64 `json:"weights"`
}

func (l *LinearQ) Record(path string) error {
	params := &linearParams{
		Low:     l.low,
		High:    l.high,
		Weights: make(map[string][]float64, len(l.weights)),
	}
	for a, w := range l.weights {
		out := make([]float64, w.Len())
		copy(out, w.RawVector().Data)
		params.Weights[a] = out
	}
	return writeArtifact(path, ArchLinear, params)
}

func newLinearFromParams(params *linearParams) (*LinearQ, error) {
	if len(params.Low) == 0 || len(params.Low) != len(params.High) {
		return nil, fmt.Errorf("malformed normalization bounds")
	}
	l := NewLinearQ(0.01, 0.95, 0, &types.BoxSpace{Low: params.Low, High: params.High})
	dim := l.dim()
	for a, w := range params.Weights {
		if len(w) != dim {
			return nil, fmt.Errorf("weight vector for %q has %d components, want %d", a, len(w), dim)
		}
		data := make([]float64, dim)
		copy(data, w)
		l.weights[a] = mat.NewVecDense(dim, data)
	}
	return l, nil
}
