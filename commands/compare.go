package commands

import (
	"context"
	"os/signal"
	"path"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/careloop/glucoach/patient"
	"github.com/careloop/glucoach/policies"
	"github.com/careloop/glucoach/types"
)

func CompareCommand() *cobra.Command {
	var window int
	var recordTraces bool

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare policies on the same environment and plot reward curves",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadFileConfig(cmd)
			if err != nil {
				return err
			}
			return runCompare(cfg, window, recordTraces)
		},
	}
	cmd.Flags().IntVar(&window, "window", 50, "Moving-average window for the reward plot")
	cmd.Flags().BoolVar(&recordTraces, "record-traces", false, "Record episode traces as JSONL")
	return cmd
}

func runCompare(cfg *FileConfig, window int, recordTraces bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := types.NewComparison(&types.ComparisonConfig{
		Runs:              runs,
		Episodes:          cfg.Training.Episodes,
		Horizon:           cfg.Environment.Horizon,
		EpisodesPerUpdate: cfg.Training.EpisodesPerUpdate,
		SavePath:          savePath,
		RecordTraces:      recordTraces,
		RecordPolicy:      true,
		Logger:            newLogger(),
	})
	c.AddAnalysis("episode_reward", types.NewEpisodeRewardAnalyzer(), types.RewardPlotter(path.Join(savePath, "plots"), window))
	c.AddAnalysis("termination", types.NewTerminationAnalyzer(), types.TerminationPrinter())

	tc := cfg.Training
	experiments := []struct {
		name  string
		build func(env *patient.CareEnvironment) types.Policy
	}{
		{"random", func(*patient.CareEnvironment) types.Policy { return types.NewRandomPolicy() }},
		{"qlearning", func(*patient.CareEnvironment) types.Policy {
			return policies.NewQLearning(tc.LearningRate, tc.Discount, tc.Exploration)
		}},
		{"softmax", func(*patient.CareEnvironment) types.Policy {
			return policies.NewSoftmaxQ(tc.LearningRate, tc.Discount, tc.Exploration)
		}},
		{"linear", func(env *patient.CareEnvironment) types.Policy {
			return policies.NewLinearQ(tc.LearningRate, tc.Discount, tc.Exploration, env.ObservationSpace())
		}},
	}
	for _, e := range experiments {
		// each experiment owns its own environment instance
		env, err := patient.NewCareEnvironment(cfg.Environment)
		if err != nil {
			return err
		}
		c.AddExperiment(types.NewExperiment(e.name, e.build(env), env))
	}

	return c.Run(ctx)
}
