package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/careloop/glucoach/patient"
	"github.com/careloop/glucoach/policies"
	"github.com/careloop/glucoach/types"
)

// TrainingConfig holds the learning hyperparameters
type TrainingConfig struct {
	Episodes          int     `yaml:"episodes"`
	EpisodesPerUpdate int     `yaml:"episodes_per_update"`
	Discount          float64 `yaml:"discount"`
	LearningRate      float64 `yaml:"learning_rate"`
	Exploration       float64 `yaml:"exploration"`
	Policy            string  `yaml:"policy"`
}

// FileConfig is the single configuration structure for a run
type FileConfig struct {
	Environment *patient.Config `yaml:"environment"`
	Training    TrainingConfig  `yaml:"training"`
}

func defaultFileConfig() *FileConfig {
	return &FileConfig{
		Environment: patient.DefaultConfig(),
		Training: TrainingConfig{
			Episodes:          2000,
			EpisodesPerUpdate: 10,
			Discount:          0.95,
			LearningRate:      0.1,
			Exploration:       0.1,
			Policy:            "qlearning",
		},
	}
}

// loadFileConfig reads the YAML file over the defaults and applies any
// explicitly set command-line overrides
func loadFileConfig(cmd *cobra.Command) (*FileConfig, error) {
	cfg := defaultFileConfig()
	if configPath != "" {
		bs, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", configPath, err)
		}
		if err := yaml.Unmarshal(bs, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", configPath, err)
		}
	}
	if cmd.Flags().Changed("episodes") {
		cfg.Training.Episodes = episodes
	}
	if cmd.Flags().Changed("horizon") {
		cfg.Environment.Horizon = horizon
	}
	if cmd.Flags().Changed("seed") {
		cfg.Environment.Seed = seed
	}
	if cmd.Flags().Changed("policy") {
		cfg.Training.Policy = policyName
	}
	return cfg, nil
}

func (c *FileConfig) yamlString() string {
	bs, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	return string(bs)
}

// buildPolicy constructs the configured policy variant
func buildPolicy(tc TrainingConfig, env *patient.CareEnvironment) (types.Policy, error) {
	switch tc.Policy {
	case "qlearning":
		return policies.NewQLearning(tc.LearningRate, tc.Discount, tc.Exploration), nil
	case "softmax":
		return policies.NewSoftmaxQ(tc.LearningRate, tc.Discount, tc.Exploration), nil
	case "linear":
		return policies.NewLinearQ(tc.LearningRate, tc.Discount, tc.Exploration, env.ObservationSpace()), nil
	case "random":
		return types.NewRandomPolicy(), nil
	}
	return nil, fmt.Errorf("unknown policy %q (want qlearning, softmax, linear or random)", tc.Policy)
}
