package types

import "context"

// EpisodeContext wraps the static and dynamic information of one episode.
// Static: episode number, horizon, optional reset seed.
// Dynamic: the trace collected during the episode and its outcome.
type EpisodeContext struct {
	// Context used to stop the run, checked between episodes only
	Context context.Context
	// Episode number within the run
	Episode int
	// Horizon of the episode
	Horizon int
	// Optional seed for the environment reset, for reproducible episodes
	Seed *uint64

	// Trace of the steps taken in this episode
	Trace *Trace
	// Number of timesteps executed
	Timesteps int
	// Cause of termination reported by the environment
	Cause string
	// Error that aborted the episode, if any
	Err error
}

func NewEpisodeContext(ctx context.Context, episode, horizon int) *EpisodeContext {
	return &EpisodeContext{
		Context: ctx,
		Episode: episode,
		Horizon: horizon,
		Trace:   NewTrace(),
	}
}

// StepContext carries per-step information into the environment
type StepContext struct {
	Episode *EpisodeContext
	Step    int
}
