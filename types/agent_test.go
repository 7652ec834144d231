package types

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAction struct{ name string }

func (a *stubAction) Hash() string { return a.name }

var stubActions = []Action{&stubAction{"left"}, &stubAction{"right"}}

type stubState struct{ id int }

func (s *stubState) Hash() string      { return fmt.Sprintf("s%d", s.id) }
func (s *stubState) Actions() []Action { return stubActions }
func (s *stubState) Vector() []float64 { return []float64{float64(s.id)} }

// stubEnv terminates every episode after episodeLen steps and can be
// told to fail or panic in specific episodes
type stubEnv struct {
	episodeLen int
	episode    int
	steps      int

	failEpisodes  map[int]bool
	panicEpisodes map[int]bool
}

var _ Environment = &stubEnv{}

func newStubEnv(episodeLen int) *stubEnv {
	return &stubEnv{
		episodeLen:    episodeLen,
		episode:       -1,
		failEpisodes:  make(map[int]bool),
		panicEpisodes: make(map[int]bool),
	}
}

func (e *stubEnv) Reset(ec *EpisodeContext) (State, error) {
	e.episode++
	e.steps = 0
	return &stubState{id: 0}, nil
}

func (e *stubEnv) Step(a Action, _ *StepContext) (*StepResult, error) {
	if e.failEpisodes[e.episode] {
		return nil, fmt.Errorf("transient failure")
	}
	if e.panicEpisodes[e.episode] {
		panic("simulated panic")
	}
	e.steps++
	return &StepResult{
		Observation: &stubState{id: e.steps},
		Reward:      1,
		Done:        e.steps >= e.episodeLen,
		Info:        map[string]interface{}{InfoKeyCause: "horizon"},
	}, nil
}

func (e *stubEnv) ObservationSpace() *BoxSpace {
	return &BoxSpace{Low: []float64{0}, High: []float64{100}}
}

func (e *stubEnv) ActionSpace() *DiscreteSpace {
	return NewDiscreteSpace(stubActions...)
}

// recordingPolicy counts interactions and can fail its batch update
type recordingPolicy struct {
	updates     int
	batchSizes  []int
	failUpdates bool
}

var _ Policy = &recordingPolicy{}

func (p *recordingPolicy) NextAction(step int, state State, actions []Action) (Action, bool) {
	return actions[0], true
}

func (p *recordingPolicy) Update(int, State, Action, *StepResult) {
	p.updates++
}

func (p *recordingPolicy) UpdateEpisode(episode int, batch []*Trace) error {
	if p.failUpdates {
		return fmt.Errorf("malformed batch")
	}
	p.batchSizes = append(p.batchSizes, len(batch))
	return nil
}

func (p *recordingPolicy) SetExploration(float64) {}
func (p *recordingPolicy) Reset()                 {}
func (p *recordingPolicy) Record(string) error    { return nil }

func TestAgentRunsAllEpisodes(t *testing.T) {
	policy := &recordingPolicy{}
	agent := NewAgent(&AgentConfig{
		Episodes:          4,
		Horizon:           5,
		EpisodesPerUpdate: 1,
		Policy:            policy,
		Environment:       newStubEnv(3),
	})
	rctx := NewRunContext(context.Background(), 0, nil)

	require.NoError(t, agent.Run(rctx))
	assert.Len(t, rctx.EpisodeRewards, 4)
	assert.Equal(t, 4, rctx.TerminationCounts["horizon"])
	assert.Equal(t, 4*3, rctx.Timesteps)
	assert.Equal(t, 3.0, rctx.MeanReward())
}

func TestAgentContinuesAfterEpisodeError(t *testing.T) {
	env := newStubEnv(3)
	env.failEpisodes[1] = true
	agent := NewAgent(&AgentConfig{
		Episodes:    3,
		Horizon:     5,
		Policy:      &recordingPolicy{},
		Environment: env,
	})
	rctx := NewRunContext(context.Background(), 0, nil)

	require.NoError(t, agent.Run(rctx))
	assert.Equal(t, 1, rctx.FailedEpisodes)
	assert.Len(t, rctx.EpisodeRewards, 2, "the failed episode's experience is discarded")
}

func TestAgentRecoversFromEpisodePanic(t *testing.T) {
	env := newStubEnv(3)
	env.panicEpisodes[0] = true
	agent := NewAgent(&AgentConfig{
		Episodes:    2,
		Horizon:     5,
		Policy:      &recordingPolicy{},
		Environment: env,
	})
	rctx := NewRunContext(context.Background(), 0, nil)

	require.NoError(t, agent.Run(rctx))
	assert.Equal(t, 1, rctx.FailedEpisodes)
	assert.Len(t, rctx.EpisodeRewards, 1)
}

func TestAgentAbortsOnPolicyUpdateError(t *testing.T) {
	agent := NewAgent(&AgentConfig{
		Episodes:          3,
		Horizon:           5,
		EpisodesPerUpdate: 1,
		Policy:            &recordingPolicy{failUpdates: true},
		Environment:       newStubEnv(3),
	})
	rctx := NewRunContext(context.Background(), 0, nil)

	err := agent.Run(rctx)
	var updateErr *PolicyUpdateError
	require.True(t, errors.As(err, &updateErr))
	assert.Equal(t, 0, updateErr.Episode)
}

func TestAgentBatchesEpisodesPerUpdate(t *testing.T) {
	policy := &recordingPolicy{}
	agent := NewAgent(&AgentConfig{
		Episodes:          5,
		Horizon:           5,
		EpisodesPerUpdate: 2,
		Policy:            policy,
		Environment:       newStubEnv(3),
	})
	rctx := NewRunContext(context.Background(), 0, nil)

	require.NoError(t, agent.Run(rctx))
	// two full batches plus the final flush
	assert.Equal(t, []int{2, 2, 1}, policy.batchSizes)
}

func TestAgentStopsBetweenEpisodes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := &recordingPolicy{}
	agent := NewAgent(&AgentConfig{
		Episodes:          100,
		Horizon:           5,
		EpisodesPerUpdate: 1,
		Policy:            policy,
		Environment:       newStubEnv(3),
	})
	rctx := NewRunContext(ctx, 0, nil)
	rctx.OnEpisode = func(ec *EpisodeContext) {
		if ec.Episode == 2 {
			cancel()
		}
	}

	require.NoError(t, agent.Run(rctx))
	assert.Len(t, rctx.EpisodeRewards, 3, "the in-flight episode completes before the stop")
}

func TestAgentEvaluationSkipsUpdates(t *testing.T) {
	policy := &recordingPolicy{}
	agent := NewAgent(&AgentConfig{
		Episodes:          3,
		Horizon:           5,
		EpisodesPerUpdate: 1,
		Evaluation:        true,
		Policy:            policy,
		Environment:       newStubEnv(3),
	})
	rctx := NewRunContext(context.Background(), 0, nil)

	require.NoError(t, agent.Run(rctx))
	assert.Zero(t, policy.updates)
	assert.Empty(t, policy.batchSizes)
	assert.Len(t, rctx.EpisodeRewards, 3)
}

func TestTraceRewards(t *testing.T) {
	trace := NewTrace()
	for i := 0; i < 3; i++ {
		trace.Append(i, &stubState{id: i}, stubActions[0], &StepResult{
			Observation: &stubState{id: i + 1},
			Reward:      float64(i + 1),
			Done:        i == 2,
			Info:        map[string]interface{}{InfoKeyCause: "horizon"},
		})
	}

	assert.Equal(t, 6.0, trace.TotalReward())
	assert.Equal(t, []float64{1, 2, 3}, trace.Rewards())
	assert.Equal(t, "horizon", trace.Cause())

	bs, err := trace.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(bs), `"action":"left"`)
}
