package types

import "fmt"

// Phase of the environment lifecycle
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseReady
	PhaseTerminal
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseReady:
		return "ready"
	case PhaseTerminal:
		return "terminal"
	}
	return "unknown"
}

// InvalidActionError signals an action outside the declared action space.
// Caller programming error, not retried.
type InvalidActionError struct {
	Action Action
}

func (e *InvalidActionError) Error() string {
	return fmt.Sprintf("action %q is not in the action space", e.Action.Hash())
}

// InvalidStateError signals a Step or Reset in the wrong lifecycle phase.
type InvalidStateError struct {
	Op    string
	Phase Phase
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s in %s phase", e.Op, e.Phase)
}

// PolicyUpdateError is fatal: a corrupted policy would invalidate all
// subsequent episodes, so the training run aborts.
type PolicyUpdateError struct {
	Episode int
	Err     error
}

func (e *PolicyUpdateError) Error() string {
	return fmt.Sprintf("policy update failed at episode %d: %v", e.Episode, e.Err)
}

func (e *PolicyUpdateError) Unwrap() error {
	return e.Err
}

// ArtifactError signals a corrupt or version-incompatible policy artifact.
type ArtifactError struct {
	Path     string
	Expected int
	Found    int
	Reason   string
}

func (e *ArtifactError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("policy artifact %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("policy artifact %s: expected version %d, found %d", e.Path, e.Expected, e.Found)
}
