package patient

// Termination causes reported through the step info. Leaving the safe
// band is an expected, learnable outcome, never an error.
const (
	TerminationNone              = ""
	TerminationHypoglycemia      = "hypoglycemia"
	TerminationHyperglycemia     = "hyperglycemia"
	TerminationAdherenceCollapse = "adherence_collapse"
	TerminationHorizon           = "horizon"
)

// FailureTermination reports whether the cause is an unsafe exit rather
// than natural horizon termination
func FailureTermination(cause string) bool {
	return cause != TerminationNone && cause != TerminationHorizon
}

// Dynamics is the one-day transition function of the patient model
type Dynamics struct {
	cfg DynamicsConfig
}

func NewDynamics(cfg DynamicsConfig) *Dynamics {
	return &Dynamics{cfg: cfg}
}

// Advance computes the next-day state for the chosen action. Pure
// function of its inputs and the configured parameters; all randomness
// lives in the initial-state sampler, so runs are reproducible from the
// seed stream alone. The returned cause is a failure termination or
// TerminationNone; horizon termination is the environment's call.
func (d *Dynamics) Advance(s PatientState, a *CareAction) (PatientState, string) {
	next := s

	// glucose response
	g := s.Glucose + d.cfg.Drift
	if a.Exercise == Rest {
		g += d.cfg.RestBump
	} else {
		// stronger with adherence, weaker with fatigue
		effect := d.cfg.ExerciseEffect * a.Exercise.factor() *
			(0.5 + 0.5*s.Adherence) * (1 - 0.5*s.Fatigue)
		g -= effect
	}
	if a.Therapy {
		// a taken dose pulls glucose toward the target center
		g -= d.cfg.TherapyGain * (s.Glucose - d.cfg.TargetBand.Mid())
		next.TherapyGapDays = 0
	} else {
		// skipped therapy compounds over consecutive days
		next.TherapyGapDays = s.TherapyGapDays + 1
		g += d.cfg.SkipPenalty * float64(next.TherapyGapDays)
	}
	next.Glucose = clamp(g, d.cfg.GlucoseBounds.Low, d.cfg.GlucoseBounds.High)

	// adherence decays toward zero absent reinforcement
	adh := s.Adherence * (1 - d.cfg.AdherenceDecay)
	if a.Exercise != Rest && a.Therapy {
		adh += d.cfg.AdherenceGain * (1 - adh)
	}
	if a.Exercise == VigorousRun && s.Fatigue > 0.7 {
		adh -= d.cfg.OverexertionPenalty
	}
	next.Adherence = clamp(adh, 0, 1)

	// fatigue
	f := s.Fatigue
	if a.Exercise == Rest {
		f -= d.cfg.FatigueRecovery
	} else {
		f += d.cfg.FatigueRise * a.Exercise.factor()
	}
	next.Fatigue = clamp(f, 0, 1)

	next.ExerciseMinutes = s.ExerciseMinutes + a.Exercise.Minutes()

	return next, d.failureCause(next)
}

func (d *Dynamics) failureCause(s PatientState) string {
	switch {
	case s.Glucose <= d.cfg.SafeBand.Low:
		return TerminationHypoglycemia
	case s.Glucose >= d.cfg.SafeBand.High:
		return TerminationHyperglycemia
	case s.Adherence <= 0:
		return TerminationAdherenceCollapse
	}
	return TerminationNone
}

func clamp(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
