package patient

import "github.com/careloop/glucoach/types"

// Intensity of the recommended daily exercise
type Intensity int

const (
	Rest Intensity = iota
	LightWalk
	ModerateJog
	VigorousRun
)

func (i Intensity) String() string {
	switch i {
	case Rest:
		return "rest"
	case LightWalk:
		return "light_walk"
	case ModerateJog:
		return "moderate_jog"
	case VigorousRun:
		return "vigorous_run"
	}
	return "unknown"
}

// Minutes of exercise one day at this intensity adds
func (i Intensity) Minutes() float64 {
	switch i {
	case LightWalk:
		return 20
	case ModerateJog:
		return 30
	case VigorousRun:
		return 45
	}
	return 0
}

// factor scales the glucose response. Vigorous effort yields only
// marginally more than moderate: diminishing returns on over-exercise.
func (i Intensity) factor() float64 {
	switch i {
	case LightWalk:
		return 0.5
	case ModerateJog:
		return 1.0
	case VigorousRun:
		return 1.3
	}
	return 0
}

// CareAction is one daily recommendation: an exercise intensity combined
// with the therapy-adherence decision. Immutable once issued.
type CareAction struct {
	Exercise Intensity
	Therapy  bool
}

var _ types.Action = &CareAction{}

func (a *CareAction) Hash() string {
	if a.Therapy {
		return a.Exercise.String() + "+take"
	}
	return a.Exercise.String() + "+skip"
}

var (
	RestSkip     = &CareAction{Rest, false}
	RestTake     = &CareAction{Rest, true}
	WalkSkip     = &CareAction{LightWalk, false}
	WalkTake     = &CareAction{LightWalk, true}
	JogSkip      = &CareAction{ModerateJog, false}
	JogTake      = &CareAction{ModerateJog, true}
	RunSkip      = &CareAction{VigorousRun, false}
	RunTake      = &CareAction{VigorousRun, true}
	AllActions   = []types.Action{RestSkip, RestTake, WalkSkip, WalkTake, JogSkip, JogTake, RunSkip, RunTake}
)
