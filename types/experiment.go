package types

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strconv"

	"github.com/careloop/glucoach/util"
)

// Experiment encapsulates one named policy/environment pairing
type Experiment struct {
	Name        string
	policy      Policy
	environment Environment
}

func NewExperiment(name string, policy Policy, environment Environment) *Experiment {
	return &Experiment{
		Name:        name,
		policy:      policy,
		environment: environment,
	}
}

// Reset clears the learned policy parameters between runs
func (e *Experiment) Reset() {
	e.policy.Reset()
}

type experimentRunConfig struct {
	CurrentRun        int
	Episodes          int
	Horizon           int
	EpisodesPerUpdate int
	Seed              uint64
	Context           context.Context
	Logger            *slog.Logger

	Analyzers []Analyzer

	RecordTraces bool
	RecordPolicy bool
	SavePath     string

	LongestExpNameLen int
}

// Run the experiment for the configured number of episodes, feeding every
// completed trace to the analyzers
func (e *Experiment) Run(rConfig *experimentRunConfig) error {
	agent := NewAgent(&AgentConfig{
		Episodes:          rConfig.Episodes,
		Horizon:           rConfig.Horizon,
		EpisodesPerUpdate: rConfig.EpisodesPerUpdate,
		Seed:              rConfig.Seed,
		Policy:            e.policy,
		Environment:       e.environment,
	})

	rctx := NewRunContext(rConfig.Context, rConfig.CurrentRun, rConfig.Logger)
	completed := 0
	rctx.OnEpisode = func(ec *EpisodeContext) {
		completed++
		for _, a := range rConfig.Analyzers {
			a.Analyze(rConfig.CurrentRun, ec.Episode, e.Name, ec.Trace)
		}
		if rConfig.RecordTraces {
			e.recordTrace(rConfig, ec.Trace)
		}
		// terminal execution display
		fmt.Printf("\rExp:%*s, Eps:%d/%d, Failed:%d, Mean reward:%8.3f",
			rConfig.LongestExpNameLen, e.Name, completed, rConfig.Episodes,
			rctx.FailedEpisodes, rctx.MeanReward())
	}

	err := agent.Run(rctx)
	fmt.Println("")
	if err != nil {
		return fmt.Errorf("experiment %s: %w", e.Name, err)
	}

	if rConfig.RecordPolicy {
		artifactPath := path.Join(rConfig.SavePath, "policies", e.Name+"_"+strconv.Itoa(rConfig.CurrentRun)+".json")
		if err := e.policy.Record(artifactPath); err != nil {
			return fmt.Errorf("recording policy for %s: %w", e.Name, err)
		}
	}
	return nil
}

func (e *Experiment) recordTrace(rConfig *experimentRunConfig, trace *Trace) {
	tracesFile := path.Join(rConfig.SavePath, "traces", e.Name+"_"+strconv.Itoa(rConfig.CurrentRun)+".jsonl")
	bs, err := json.Marshal(trace)
	if err != nil {
		return
	}
	util.AppendToFile(tracesFile, string(bs))
}

// Generic dataset that contains information after processing the traces
type DataSet interface{}

// Analyzer compresses the information in the traces to a DataSet
type Analyzer interface {
	// Run, episode, experiment name, trace
	Analyze(int, int, string, *Trace)
	// Resulting dataset
	DataSet() DataSet
	// Reset the analyzer
	Reset()
}

// Comparator differentiates between datasets with associated names
// run, experiment names, datasets
type Comparator func(int, []string, []DataSet)

func NoopComparator() Comparator {
	return func(int, []string, []DataSet) {}
}

// ComparisonConfig contains the configuration for the comparison
type ComparisonConfig struct {
	Runs              int
	Episodes          int
	Horizon           int
	EpisodesPerUpdate int
	Seed              uint64

	SavePath     string
	RecordTraces bool
	RecordPolicy bool
	Logger       *slog.Logger
}

// Comparison runs several experiments over the same configuration,
// analyzes their traces and compares the resulting datasets
type Comparison struct {
	Experiments []*Experiment
	analyzers   map[string]Analyzer
	comparators map[string]Comparator
	cConfig     *ComparisonConfig
}

func NewComparison(config *ComparisonConfig) *Comparison {
	foldersToCreate := []string{""}
	if config.RecordTraces {
		foldersToCreate = append(foldersToCreate, "traces")
	}
	if config.RecordPolicy {
		foldersToCreate = append(foldersToCreate, "policies")
	}
	for _, s := range foldersToCreate {
		fldPath := path.Join(config.SavePath, s)
		if _, err := os.Stat(fldPath); err != nil {
			os.MkdirAll(fldPath, 0755)
		}
	}

	return &Comparison{
		Experiments: make([]*Experiment, 0),
		analyzers:   make(map[string]Analyzer),
		comparators: make(map[string]Comparator),
		cConfig:     config,
	}
}

// AddAnalysis adds an analyzer and comparator pair to the comparison
func (c *Comparison) AddAnalysis(name string, analyzer Analyzer, comparator Comparator) {
	c.analyzers[name] = analyzer
	c.comparators[name] = comparator
}

func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

// Run the comparison
func (c *Comparison) Run(ctx context.Context) error {
	c.recordConfig()

	longestNameLen := 0
	for _, e := range c.Experiments {
		if len(e.Name) > longestNameLen {
			longestNameLen = len(e.Name)
		}
	}

	for run := 0; run < c.cConfig.Runs; run++ {
		fmt.Printf("Run %d\n", run+1)
		datasets := make(map[string][]DataSet)
		for name := range c.analyzers {
			datasets[name] = make([]DataSet, len(c.Experiments))
		}

		names := make([]string, len(c.Experiments))
		for i, e := range c.Experiments {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if err := e.Run(c.prepareRunConfig(ctx, run, longestNameLen)); err != nil {
				return err
			}
			for name, a := range c.analyzers {
				datasets[name][i] = a.DataSet()
				a.Reset()
			}
			names[i] = e.Name
			e.Reset()
		}
		for name, comp := range c.comparators {
			comp(run, names, datasets[name])
		}
	}
	return nil
}

func (c *Comparison) prepareRunConfig(ctx context.Context, run, longestExpNameLen int) *experimentRunConfig {
	rCfg := &experimentRunConfig{
		CurrentRun:        run,
		Episodes:          c.cConfig.Episodes,
		Horizon:           c.cConfig.Horizon,
		EpisodesPerUpdate: c.cConfig.EpisodesPerUpdate,
		Seed:              c.cConfig.Seed,
		Context:           ctx,
		Logger:            c.cConfig.Logger,
		Analyzers:         make([]Analyzer, 0),
		RecordTraces:      c.cConfig.RecordTraces,
		RecordPolicy:      c.cConfig.RecordPolicy,
		SavePath:          c.cConfig.SavePath,
		LongestExpNameLen: longestExpNameLen,
	}
	for _, a := range c.analyzers {
		rCfg.Analyzers = append(rCfg.Analyzers, a)
	}
	return rCfg
}

// record the configuration of the comparison for later inspection
func (c *Comparison) recordConfig() {
	cfg := c.cConfig
	out := make(map[string]interface{})
	out["runs"] = cfg.Runs
	out["episodes"] = cfg.Episodes
	out["horizon"] = cfg.Horizon
	out["episodes_per_update"] = cfg.EpisodesPerUpdate
	out["seed"] = cfg.Seed
	out["record_traces"] = cfg.RecordTraces
	out["record_policy"] = cfg.RecordPolicy

	experiments := make([]string, 0)
	for _, e := range c.Experiments {
		experiments = append(experiments, e.Name)
	}
	out["experiments"] = experiments

	analyzers := make([]string, 0)
	for name := range c.analyzers {
		analyzers = append(analyzers, name)
	}
	out["analyzers"] = analyzers

	bs, err := json.Marshal(out)
	if err != nil {
		return
	}
	util.WriteToFile(path.Join(cfg.SavePath, "comparison_config.json"), string(bs))
}
