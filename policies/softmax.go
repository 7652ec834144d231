package policies

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/careloop/glucoach/types"
)

// SoftmaxQ is a tabular Q-learning policy sampling actions from a
// Boltzmann distribution over the learned values. The temperature is the
// exploration knob: high temperatures approach uniform sampling, zero
// selects greedily.
type SoftmaxQ struct {
	qTable      *QTable
	alpha       float64
	discount    float64
	temperature float64
	src         rand.Source
	rand        *rand.Rand
}

var _ types.Policy = &SoftmaxQ{}

func NewSoftmaxQ(alpha, discount, temperature float64) *SoftmaxQ {
	return NewSoftmaxQSeeded(alpha, discount, temperature, uint64(time.Now().UnixNano()))
}

func NewSoftmaxQSeeded(alpha, discount, temperature float64, seed uint64) *SoftmaxQ {
	src := rand.NewSource(seed)
	return &SoftmaxQ{
		qTable:      NewQTable(),
		alpha:       alpha,
		discount:    discount,
		temperature: temperature,
		src:         src,
		rand:        rand.New(src),
	}
}

func (s *SoftmaxQ) NextAction(step int, state types.State, actions []types.Action) (types.Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	stateHash := state.Hash()

	if s.temperature <= 0 {
		// greedy, for deterministic evaluation
		actionsMap := make(map[string]types.Action)
		availableActions := make([]string, len(actions))
		for i, a := range actions {
			actionsMap[a.Hash()] = a
			availableActions[i] = a.Hash()
		}
		maxAction, _ := s.qTable.MaxAmong(stateHash, availableActions, 0)
		if maxAction == "" {
			return nil, false
		}
		return actionsMap[maxAction], true
	}

	sum := float64(0)
	weights := make([]float64, len(actions))
	vals := make([]float64, len(actions))
	for i, action := range actions {
		val := s.qTable.Get(stateHash, action.Hash(), 0)
		exp := math.Exp(val / s.temperature)
		vals[i] = exp
		sum += exp
	}
	for i, v := range vals {
		weights[i] = v / sum
	}
	i, ok := sampleuv.NewWeighted(weights, s.src).Take()
	if !ok {
		return nil, false
	}
	return actions[i], true
}

func (s *SoftmaxQ) Update(step int, state types.State, action types.Action, result *types.StepResult) {
	stateHash := state.Hash()
	actionHash := action.Hash()

	nextVal := 0.0
	if !result.Done {
		_, nextVal = s.qTable.Max(result.Observation.Hash(), 0)
	}
	curVal := s.qTable.Get(stateHash, actionHash, 0)
	s.qTable.Set(stateHash, actionHash, (1-s.alpha)*curVal+s.alpha*(result.Reward+s.discount*nextVal))
}

func (s *SoftmaxQ) UpdateEpisode(episode int, batch []*types.Trace) error {
	if len(batch) == 0 {
		return fmt.Errorf("empty experience batch")
	}
	return nil
}

func (s *SoftmaxQ) SetExploration(rate float64) {
	s.temperature = rate
}

func (s *SoftmaxQ) Reset() {
	s.qTable = NewQTable()
}

func (s *SoftmaxQ) Record(path string) error {
	return writeArtifact(path, ArchSoftmax, s.qTable.Table())
}
