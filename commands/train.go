package commands

import (
	"context"
	"fmt"
	"os/signal"
	"path"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/careloop/glucoach/patient"
	"github.com/careloop/glucoach/store"
	"github.com/careloop/glucoach/types"
)

func TrainCommand() *cobra.Command {
	var dbPath string
	var artifactPath string

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a policy and persist it as a versioned artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadFileConfig(cmd)
			if err != nil {
				return err
			}
			if artifactPath == "" {
				artifactPath = path.Join(savePath, "policy.json")
			}
			return runTrain(cfg, dbPath, artifactPath)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database recording run history")
	cmd.Flags().StringVar(&artifactPath, "artifact", "", "Output path of the policy artifact (default <save>/policy.json)")
	return cmd
}

func runTrain(cfg *FileConfig, dbPath, artifactPath string) error {
	logger := newLogger()

	env, err := patient.NewCareEnvironment(cfg.Environment)
	if err != nil {
		return err
	}
	policy, err := buildPolicy(cfg.Training, env)
	if err != nil {
		return err
	}

	// stop between episodes on interrupt, never mid-step
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var runStore *store.RunStore
	runID := ""
	if dbPath != "" {
		runStore, err = store.Open(dbPath)
		if err != nil {
			return err
		}
		defer runStore.Close()
		runID, err = runStore.CreateRun(ctx, cfg.Training.Policy, cfg.Training.Episodes, cfg.Environment.Horizon, cfg.yamlString())
		if err != nil {
			return err
		}
		logger.Info("recording run", "id", runID, "db", dbPath)
	}

	rctx := types.NewRunContext(ctx, 0, logger)
	completed := 0
	rctx.OnEpisode = func(ec *types.EpisodeContext) {
		completed++
		fmt.Printf("\rEpisode:%d/%d, Failed:%d, Mean reward:%8.3f",
			completed, cfg.Training.Episodes, rctx.FailedEpisodes, rctx.MeanReward())
		if runStore != nil {
			if err := runStore.RecordEpisode(ctx, runID, ec.Episode, ec.Timesteps, ec.Trace.TotalReward(), ec.Cause); err != nil {
				logger.Warn("recording episode failed", "episode", ec.Episode, "err", err)
			}
		}
	}

	agent := types.NewAgent(&types.AgentConfig{
		Episodes:          cfg.Training.Episodes,
		Horizon:           cfg.Environment.Horizon,
		EpisodesPerUpdate: cfg.Training.EpisodesPerUpdate,
		Policy:            policy,
		Environment:       env,
	})
	err = agent.Run(rctx)
	fmt.Println("")
	if err != nil {
		return err
	}

	if runStore != nil {
		// the signal context may already be canceled at this point
		if err := runStore.FinishRun(context.Background(), runID, rctx.MeanReward()); err != nil {
			logger.Warn("finishing run record failed", "err", err)
		}
	}

	if err := policy.Record(artifactPath); err != nil {
		return fmt.Errorf("recording policy artifact: %w", err)
	}
	logger.Info("training complete",
		"episodes", len(rctx.EpisodeRewards),
		"failed", rctx.FailedEpisodes,
		"mean_reward", rctx.MeanReward(),
		"artifact", artifactPath)
	printTerminations(rctx.TerminationCounts)
	return nil
}

func printTerminations(counts map[string]int) {
	causes := make([]string, 0, len(counts))
	for c := range counts {
		causes = append(causes, c)
	}
	sort.Strings(causes)
	fmt.Printf("Terminations:")
	for _, c := range causes {
		label := c
		if label == "" {
			label = "none"
		}
		fmt.Printf(" %s=%d", label, counts[c])
	}
	fmt.Println("")
}
