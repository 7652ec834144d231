package types

import (
	"context"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

type AgentConfig struct {
	Episodes int
	Horizon  int
	// episodes buffered between two batch policy updates
	EpisodesPerUpdate int
	// base seed for per-episode environment resets, 0 leaves the
	// environment's own random stream untouched
	Seed uint64
	// Evaluation disables all policy updates
	Evaluation bool

	Policy      Policy
	Environment Environment
}

// RunContext holds the mutable state of one training run: stop context,
// running statistics and the experience buffer. Kept explicit so parallel
// runs never share process-wide globals.
type RunContext struct {
	Context context.Context
	Run     int
	Logger  *slog.Logger

	// statistics for convergence monitoring
	EpisodeRewards    []float64
	TerminationCounts map[string]int
	FailedEpisodes    int
	Timesteps         int

	// invoked after every completed episode, used for progress display,
	// analyzers and run recording
	OnEpisode func(ec *EpisodeContext)

	buffer []*Trace
}

func NewRunContext(ctx context.Context, run int, logger *slog.Logger) *RunContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunContext{
		Context:           ctx,
		Run:               run,
		Logger:            logger,
		EpisodeRewards:    make([]float64, 0),
		TerminationCounts: make(map[string]int),
		buffer:            make([]*Trace, 0),
	}
}

// MeanReward over all completed episodes so far
func (r *RunContext) MeanReward() float64 {
	if len(r.EpisodeRewards) == 0 {
		return 0
	}
	return stat.Mean(r.EpisodeRewards, nil)
}

// StdDevReward over all completed episodes so far
func (r *RunContext) StdDevReward() float64 {
	if len(r.EpisodeRewards) < 2 {
		return 0
	}
	return stat.StdDev(r.EpisodeRewards, nil)
}

// RL agent driving the episodic interaction between a policy
// and an environment
type Agent struct {
	config      *AgentConfig
	policy      Policy
	environment Environment
}

func NewAgent(config *AgentConfig) *Agent {
	return &Agent{
		config:      config,
		policy:      config.Policy,
		environment: config.Environment,
	}
}

// Run executes the configured number of episodes. An error inside one
// episode aborts that episode only; a failed policy update aborts the run.
// The stop context is checked between episodes, never mid-step, so an
// episode always completes or fails cleanly.
func (a *Agent) Run(rctx *RunContext) error {
	for episode := 0; episode < a.config.Episodes; episode++ {
		select {
		case <-rctx.Context.Done():
			rctx.Logger.Info("training run stopped", "run", rctx.Run, "episode", episode)
			return nil
		default:
		}

		ec := NewEpisodeContext(rctx.Context, episode, a.config.Horizon)
		if a.config.Seed != 0 {
			seed := a.config.Seed + uint64(episode)
			ec.Seed = &seed
		}

		a.RunEpisode(ec)
		if ec.Err != nil {
			// the partial experience of a failed episode is discarded
			rctx.FailedEpisodes++
			rctx.Logger.Error("episode aborted", "run", rctx.Run, "episode", episode, "cause", ec.Err)
			continue
		}

		rctx.EpisodeRewards = append(rctx.EpisodeRewards, ec.Trace.TotalReward())
		rctx.TerminationCounts[ec.Cause]++
		rctx.Timesteps += ec.Timesteps
		if rctx.OnEpisode != nil {
			rctx.OnEpisode(ec)
		}

		if a.config.Evaluation {
			continue
		}
		rctx.buffer = append(rctx.buffer, ec.Trace)
		if a.updateDue(len(rctx.buffer)) {
			if err := a.policy.UpdateEpisode(episode, rctx.buffer); err != nil {
				return &PolicyUpdateError{Episode: episode, Err: err}
			}
			rctx.buffer = rctx.buffer[:0]
		}
	}
	if !a.config.Evaluation && len(rctx.buffer) > 0 {
		if err := a.policy.UpdateEpisode(a.config.Episodes-1, rctx.buffer); err != nil {
			return &PolicyUpdateError{Episode: a.config.Episodes - 1, Err: err}
		}
		rctx.buffer = rctx.buffer[:0]
	}
	return nil
}

func (a *Agent) updateDue(buffered int) bool {
	interval := a.config.EpisodesPerUpdate
	if interval <= 0 {
		interval = 1
	}
	return buffered >= interval
}

// RunEpisode runs a single episode, recording the trace and outcome on
// the episode context. Panics inside the environment or policy abort the
// episode, not the run.
func (a *Agent) RunEpisode(ec *EpisodeContext) {
	defer func() {
		if r := recover(); r != nil {
			ec.Err = fmt.Errorf("panic in episode %d: %v", ec.Episode, r)
		}
	}()

	state, err := a.environment.Reset(ec)
	if err != nil {
		ec.Err = fmt.Errorf("reset: %w", err)
		return
	}

	for step := 0; step < ec.Horizon; step++ {
		actions := state.Actions()
		if len(actions) == 0 {
			break
		}
		action, ok := a.policy.NextAction(step, state, actions)
		if !ok {
			break
		}
		result, err := a.environment.Step(action, &StepContext{Episode: ec, Step: step})
		if err != nil {
			ec.Err = fmt.Errorf("step %d: %w", step, err)
			return
		}
		if !a.config.Evaluation {
			a.policy.Update(step, state, action, result)
		}
		ec.Trace.Append(step, state, action, result)
		ec.Timesteps++

		if result.Done {
			ec.Cause = result.Cause()
			return
		}
		state = result.Observation
	}
}
