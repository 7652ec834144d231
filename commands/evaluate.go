package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/careloop/glucoach/patient"
	"github.com/careloop/glucoach/policies"
	"github.com/careloop/glucoach/types"
)

func EvaluateCommand() *cobra.Command {
	var artifactPath string
	var evalEpisodes int

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Load a policy artifact and run deterministic evaluation episodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadFileConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("episodes") {
				evalEpisodes = episodes
			}
			return runEvaluate(cfg, artifactPath, evalEpisodes)
		},
	}
	cmd.Flags().StringVar(&artifactPath, "artifact", "results/policy.json", "Path of the policy artifact to evaluate")
	cmd.Flags().IntVar(&evalEpisodes, "eval-episodes", 100, "Number of evaluation episodes")
	return cmd
}

func runEvaluate(cfg *FileConfig, artifactPath string, evalEpisodes int) error {
	logger := newLogger()

	// corrupt or incompatible artifacts are fatal before any episode runs
	policy, err := policies.LoadPolicy(artifactPath)
	if err != nil {
		return err
	}
	// greedy action selection for a deterministic evaluation run
	policy.SetExploration(0)

	env, err := patient.NewCareEnvironment(cfg.Environment)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	evalSeed := cfg.Environment.Seed
	if evalSeed == 0 {
		evalSeed = 1
	}
	rctx := types.NewRunContext(ctx, 0, logger)
	agent := types.NewAgent(&types.AgentConfig{
		Episodes:    evalEpisodes,
		Horizon:     cfg.Environment.Horizon,
		Seed:        evalSeed,
		Evaluation:  true,
		Policy:      policy,
		Environment: env,
	})
	if err := agent.Run(rctx); err != nil {
		return err
	}

	logger.Info("evaluation complete",
		"artifact", artifactPath,
		"episodes", len(rctx.EpisodeRewards),
		"mean_reward", rctx.MeanReward(),
		"stddev_reward", rctx.StdDevReward(),
		"mean_length", float64(rctx.Timesteps)/float64(max(len(rctx.EpisodeRewards), 1)))
	printTerminations(rctx.TerminationCounts)
	fmt.Printf("Mean episodic reward: %.3f over %d episodes\n", rctx.MeanReward(), len(rctx.EpisodeRewards))
	return nil
}
