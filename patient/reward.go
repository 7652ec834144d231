package patient

// RewardModel scores a transition on adherence and health-outcome axes.
// All weights come from RewardConfig.
type RewardModel struct {
	cfg    RewardConfig
	target Range
}

func NewRewardModel(cfg RewardConfig, target Range) *RewardModel {
	return &RewardModel{cfg: cfg, target: target}
}

// Score combines the adherence delta, glucose proximity to the target
// band, a per-step cost on extreme actions and a terminal penalty on
// unsafe-band exit
func (r *RewardModel) Score(s PatientState, a *CareAction, next PatientState, cause string) float64 {
	score := r.cfg.AdherenceWeight * (next.Adherence - s.Adherence)
	score += r.cfg.GlucoseWeight * r.GlucoseProximity(next.Glucose)
	if a.Exercise == VigorousRun {
		score -= r.cfg.ActionCost
	}
	if !a.Therapy {
		score -= r.cfg.ActionCost
	}
	if FailureTermination(cause) {
		score -= r.cfg.TerminalPenalty
	}
	return score
}

// GlucoseProximity is maximal anywhere inside the target band and
// decreases monotonically with distance outside it
func (r *RewardModel) GlucoseProximity(glucose float64) float64 {
	return r.cfg.InBandReward - r.target.Distance(glucose)/r.cfg.DistanceScale
}
