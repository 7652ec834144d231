package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	episodes   int
	horizon    int
	savePath   string
	runs       int
	configPath string
	seed       uint64
	policyName string
)

func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:   "glucoach",
		Short: "Reinforcement-learned daily exercise/therapy recommendations for diabetes management",
	}
	rootCommand.PersistentFlags().IntVarP(&episodes, "episodes", "e", 0, "Number of episodes to run (overrides config)")
	rootCommand.PersistentFlags().IntVar(&horizon, "horizon", 0, "Horizon of each episode in days (overrides config)")
	rootCommand.PersistentFlags().StringVarP(&savePath, "save", "s", "results", "Folder for artifacts, traces and plots")
	rootCommand.PersistentFlags().IntVar(&runs, "runs", 1, "Number of experiment runs")
	rootCommand.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML configuration file")
	rootCommand.PersistentFlags().Uint64Var(&seed, "seed", 0, "Random seed (overrides config)")
	rootCommand.PersistentFlags().StringVarP(&policyName, "policy", "p", "qlearning", "Policy: qlearning, softmax, linear or random")
	rootCommand.AddCommand(TrainCommand())
	rootCommand.AddCommand(EvaluateCommand())
	rootCommand.AddCommand(CompareCommand())
	return rootCommand
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
