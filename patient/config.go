package patient

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Range is a closed numeric interval
type Range struct {
	Low  float64 `yaml:"low"`
	High float64 `yaml:"high"`
}

func (r Range) Mid() float64 {
	return (r.Low + r.High) / 2
}

func (r Range) Contains(v float64) bool {
	return v >= r.Low && v <= r.High
}

// Distance of v from the interval, zero inside it
func (r Range) Distance(v float64) float64 {
	if v < r.Low {
		return r.Low - v
	}
	if v > r.High {
		return v - r.High
	}
	return 0
}

func (r Range) valid() bool {
	return !math.IsNaN(r.Low) && !math.IsNaN(r.High) && r.Low <= r.High
}

// InitialConfig parameterizes the initial-state distribution
type InitialConfig struct {
	GlucoseRange   Range `yaml:"glucose_range"`
	AdherenceRange Range `yaml:"adherence_range"`
}

// DynamicsConfig parameterizes the transition function. The exact
// functional form of the glucose response is not clinically specified;
// every constant here is deliberately configuration, not a magic number.
type DynamicsConfig struct {
	// hard physiological clamp on glucose
	GlucoseBounds Range `yaml:"glucose_bounds"`
	// leaving this band terminates the episode
	SafeBand Range `yaml:"safe_band"`
	// clinically desirable glucose band
	TargetBand Range `yaml:"target_band"`

	// daily upward glucose drift
	Drift float64 `yaml:"drift"`
	// extra glucose rise on a fully sedentary day
	RestBump float64 `yaml:"rest_bump"`
	// peak glucose drop from a day of exercise
	ExerciseEffect float64 `yaml:"exercise_effect"`
	// fraction of the distance to the target center removed by a taken dose
	TherapyGain float64 `yaml:"therapy_gain"`
	// glucose penalty per consecutive skipped-therapy day, compounding
	SkipPenalty float64 `yaml:"skip_penalty"`

	// geometric decay of adherence absent reinforcement
	AdherenceDecay float64 `yaml:"adherence_decay"`
	// recovery toward full adherence on a completed recommendation
	AdherenceGain float64 `yaml:"adherence_gain"`
	// adherence erosion from vigorous effort while fatigued
	OverexertionPenalty float64 `yaml:"overexertion_penalty"`

	// fatigue rise per unit of exercise intensity
	FatigueRise float64 `yaml:"fatigue_rise"`
	// fatigue recovery on a rest day
	FatigueRecovery float64 `yaml:"fatigue_recovery"`
}

// RewardConfig holds the explicit reward weights
type RewardConfig struct {
	AdherenceWeight float64 `yaml:"adherence_weight"`
	GlucoseWeight   float64 `yaml:"glucose_weight"`
	// reward anywhere inside the target band, the maximum of the
	// glucose component
	InBandReward float64 `yaml:"in_band_reward"`
	// mg/dL of distance from the band per unit of lost reward
	DistanceScale float64 `yaml:"distance_scale"`
	// penalty when the episode terminates outside the safe band
	TerminalPenalty float64 `yaml:"terminal_penalty"`
	// per-step cost of extreme choices (vigorous effort, skipped therapy)
	ActionCost float64 `yaml:"action_cost"`
}

// Config is the full environment configuration, supplied once at
// construction
type Config struct {
	Horizon  int            `yaml:"horizon"`
	Seed     uint64         `yaml:"seed"`
	Initial  InitialConfig  `yaml:"initial"`
	Dynamics DynamicsConfig `yaml:"dynamics"`
	Reward   RewardConfig   `yaml:"reward"`
}

// DefaultConfig models one simulated week. The constants were chosen so
// that sustained rest and skipped therapy push glucose out of the safe
// band within a week, while a consistent moderate routine brings an
// elevated patient back into the target band in three to four days.
func DefaultConfig() *Config {
	return &Config{
		Horizon: 7,
		Seed:    1,
		Initial: InitialConfig{
			GlucoseRange:   Range{Low: 120, High: 190},
			AdherenceRange: Range{Low: 0.5, High: 0.7},
		},
		Dynamics: DynamicsConfig{
			GlucoseBounds:       Range{Low: 40, High: 400},
			SafeBand:            Range{Low: 55, High: 250},
			TargetBand:          Range{Low: 80, High: 120},
			Drift:               4,
			RestBump:            3,
			ExerciseEffect:      12,
			TherapyGain:         0.25,
			SkipPenalty:         3,
			AdherenceDecay:      0.12,
			AdherenceGain:       0.15,
			OverexertionPenalty: 0.1,
			FatigueRise:         0.15,
			FatigueRecovery:     0.25,
		},
		Reward: RewardConfig{
			AdherenceWeight: 1.0,
			GlucoseWeight:   1.0,
			InBandReward:    1.0,
			DistanceScale:   50,
			TerminalPenalty: 10,
			ActionCost:      0.2,
		},
	}
}

// LoadConfig reads a YAML environment configuration
func LoadConfig(path string) (*Config, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(bs, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Validate fails fast at construction, never inside a running episode
func (c *Config) Validate() error {
	if c.Horizon <= 0 {
		return fmt.Errorf("horizon must be positive, got %d", c.Horizon)
	}
	d := c.Dynamics
	for name, r := range map[string]Range{
		"initial.glucose_range":   c.Initial.GlucoseRange,
		"initial.adherence_range": c.Initial.AdherenceRange,
		"dynamics.glucose_bounds": d.GlucoseBounds,
		"dynamics.safe_band":      d.SafeBand,
		"dynamics.target_band":    d.TargetBand,
	} {
		if !r.valid() {
			return fmt.Errorf("%s: low %v must not exceed high %v", name, r.Low, r.High)
		}
	}
	if c.Initial.AdherenceRange.Low < 0 || c.Initial.AdherenceRange.High > 1 {
		return fmt.Errorf("initial.adherence_range must lie within [0, 1]")
	}
	if d.SafeBand.Low < d.GlucoseBounds.Low || d.SafeBand.High > d.GlucoseBounds.High {
		return fmt.Errorf("dynamics.safe_band must lie within glucose_bounds")
	}
	if d.TargetBand.Low < d.SafeBand.Low || d.TargetBand.High > d.SafeBand.High {
		return fmt.Errorf("dynamics.target_band must lie within safe_band")
	}
	if !c.Initial.GlucoseRange.valid() || c.Initial.GlucoseRange.Low < d.GlucoseBounds.Low || c.Initial.GlucoseRange.High > d.GlucoseBounds.High {
		return fmt.Errorf("initial.glucose_range must lie within glucose_bounds")
	}
	for name, v := range map[string]float64{
		"dynamics.therapy_gain":    d.TherapyGain,
		"dynamics.adherence_decay": d.AdherenceDecay,
		"dynamics.adherence_gain":  d.AdherenceGain,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must lie within [0, 1], got %v", name, v)
		}
	}
	for name, v := range map[string]float64{
		"reward.distance_scale":   c.Reward.DistanceScale,
		"reward.in_band_reward":   c.Reward.InBandReward,
		"reward.terminal_penalty": c.Reward.TerminalPenalty,
		"reward.action_cost":      c.Reward.ActionCost,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be finite, got %v", name, v)
		}
	}
	if c.Reward.DistanceScale <= 0 {
		return fmt.Errorf("reward.distance_scale must be positive, got %v", c.Reward.DistanceScale)
	}
	return nil
}
