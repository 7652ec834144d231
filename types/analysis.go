package types

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// EpisodeRewardAnalyzer collects the total reward of every episode
type EpisodeRewardAnalyzer struct {
	rewards []float64
}

var _ Analyzer = &EpisodeRewardAnalyzer{}

func NewEpisodeRewardAnalyzer() *EpisodeRewardAnalyzer {
	return &EpisodeRewardAnalyzer{rewards: make([]float64, 0)}
}

func (a *EpisodeRewardAnalyzer) Analyze(run, episode int, experiment string, trace *Trace) {
	a.rewards = append(a.rewards, trace.TotalReward())
}

func (a *EpisodeRewardAnalyzer) DataSet() DataSet {
	out := make([]float64, len(a.rewards))
	copy(out, a.rewards)
	return out
}

func (a *EpisodeRewardAnalyzer) Reset() {
	a.rewards = make([]float64, 0)
}

// movingAverage smooths a reward series over the given window
func movingAverage(series []float64, window int) []float64 {
	if window <= 1 || len(series) < window {
		return series
	}
	out := make([]float64, len(series)-window+1)
	sum := 0.0
	for i := 0; i < window; i++ {
		sum += series[i]
	}
	out[0] = sum / float64(window)
	for i := window; i < len(series); i++ {
		sum += series[i] - series[i-window]
		out[i-window+1] = sum / float64(window)
	}
	return out
}

// RewardPlotter renders the smoothed episode-reward curves of all
// experiments into a single comparison plot
func RewardPlotter(plotPath string, window int) Comparator {
	if _, err := os.Stat(plotPath); err != nil {
		os.MkdirAll(plotPath, os.ModePerm)
	}
	return func(run int, names []string, ds []DataSet) {
		p := plot.New()
		p.Title.Text = "Episode reward"
		p.X.Label.Text = "Episode"
		p.Y.Label.Text = "Total reward"
		for i := 0; i < len(names); i++ {
			rewards := ds[i].([]float64)
			if len(rewards) == 0 {
				continue
			}
			smoothed := movingAverage(rewards, window)
			points := make(plotter.XYs, len(smoothed))
			for j, v := range smoothed {
				points[j] = plotter.XY{X: float64(j), Y: v}
			}
			line, err := plotter.NewLine(points)
			if err != nil {
				continue
			}
			line.Color = plotutil.Color(i)
			p.Add(line)
			p.Legend.Add(names[i], line)
			fmt.Printf("Mean episode reward: %.3f for experiment: %s\n", stat.Mean(rewards, nil), names[i])
		}
		p.Save(8*vg.Inch, 8*vg.Inch, path.Join(plotPath, strconv.Itoa(run)+"_episode_reward.png"))
	}
}

// TerminationAnalyzer counts episode termination causes
type TerminationAnalyzer struct {
	counts map[string]int
}

var _ Analyzer = &TerminationAnalyzer{}

func NewTerminationAnalyzer() *TerminationAnalyzer {
	return &TerminationAnalyzer{counts: make(map[string]int)}
}

func (a *TerminationAnalyzer) Analyze(run, episode int, experiment string, trace *Trace) {
	a.counts[trace.Cause()]++
}

func (a *TerminationAnalyzer) DataSet() DataSet {
	out := make(map[string]int, len(a.counts))
	for k, v := range a.counts {
		out[k] = v
	}
	return out
}

func (a *TerminationAnalyzer) Reset() {
	a.counts = make(map[string]int)
}

// TerminationPrinter prints the termination cause counts per experiment
func TerminationPrinter() Comparator {
	return func(run int, names []string, ds []DataSet) {
		for i, name := range names {
			counts := ds[i].(map[string]int)
			causes := make([]string, 0, len(counts))
			for c := range counts {
				causes = append(causes, c)
			}
			sort.Strings(causes)
			fmt.Printf("Terminations for %s:", name)
			for _, c := range causes {
				label := c
				if label == "" {
					label = "none"
				}
				fmt.Printf(" %s=%d", label, counts[c])
			}
			fmt.Println("")
		}
	}
}
