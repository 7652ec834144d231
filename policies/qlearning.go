package policies

import (
	"fmt"
	"time"

	"golang.org/x/exp/rand"

	"github.com/careloop/glucoach/types"
)

// QLearning is a tabular epsilon-greedy Q-learning policy
type QLearning struct {
	qTable   *QTable
	alpha    float64
	discount float64
	epsilon  float64
	rand     *rand.Rand
}

var _ types.Policy = &QLearning{}

func NewQLearning(alpha, discount, epsilon float64) *QLearning {
	return NewQLearningSeeded(alpha, discount, epsilon, uint64(time.Now().UnixNano()))
}

func NewQLearningSeeded(alpha, discount, epsilon float64, seed uint64) *QLearning {
	return &QLearning{
		qTable:   NewQTable(),
		alpha:    alpha,
		discount: discount,
		epsilon:  epsilon,
		rand:     rand.New(rand.NewSource(seed)),
	}
}

func (q *QLearning) NextAction(step int, state types.State, actions []types.Action) (types.Action, bool) {
	if len(actions) == 0 {
		return nil, false
	}
	if q.rand.Float64() < q.epsilon {
		return actions[q.rand.Intn(len(actions))], true
	}

	actionsMap := make(map[string]types.Action)
	availableActions := make([]string, len(actions))
	for i, a := range actions {
		aHash := a.Hash()
		actionsMap[aHash] = a
		availableActions[i] = aHash
	}
	maxAction, _ := q.qTable.MaxAmong(state.Hash(), availableActions, 0)
	if maxAction == "" {
		return nil, false
	}
	return actionsMap[maxAction], true
}

func (q *QLearning) Update(step int, state types.State, action types.Action, result *types.StepResult) {
	stateHash := state.Hash()
	actionHash := action.Hash()

	nextVal := 0.0
	// terminal transitions carry no future value
	if !result.Done {
		_, nextVal = q.qTable.Max(result.Observation.Hash(), 0)
	}
	curVal := q.qTable.Get(stateHash, actionHash, 0)
	q.qTable.Set(stateHash, actionHash, (1-q.alpha)*curVal+q.alpha*(result.Reward+q.discount*nextVal))
}

// UpdateEpisode validates the batch; the table itself learns per step
func (q *QLearning) UpdateEpisode(episode int, batch []*types.Trace) error {
	if len(batch) == 0 {
		return fmt.Errorf("empty experience batch")
	}
	return nil
}

func (q *QLearning) SetExploration(rate float64) {
	q.epsilon = rate
}

func (q *QLearning) Reset() {
	q.qTable = NewQTable()
}

func (q *QLearning) Record(path string) error {
	return writeArtifact(path, ArchQLearning, q.qTable.Table())
}
