// Package sweep runs the full policy x predictor x ratio combination grid
// against one trace, one independent simulation per combination.
package sweep

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cuemby/clustersim/internal/domain"
	"github.com/cuemby/clustersim/internal/report"
	"github.com/cuemby/clustersim/internal/sched"
	"github.com/cuemby/clustersim/internal/trace"
	"github.com/cuemby/clustersim/pkg/simlog"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Combination identifies one sweep member: a queueing policy, whether to
// use the predictor's predict_time or fall back to timelimit, and a
// submit-time compression ratio.
type Combination struct {
	Policy  sched.Policy
	Predict bool
	Ratio   float64
}

// Name matches original_source's analyzer.cpp file-naming convention,
// "<policy>_<predictor>_x<ratio>".
func (c Combination) Name() string {
	predictor := "timelimit"
	if c.Predict {
		predictor = "time_pred"
	}
	return fmt.Sprintf("%s_%s_x%f", c.Policy, predictor, c.Ratio)
}

// DefaultCombinations returns the 4 (policy) x 2 (predictor) x 10 (ratio)
// = 80 combinations original_source's analyzer.cpp sweeps, ratios
// x0.2 .. x2.0 in steps of 0.2.
func DefaultCombinations() []Combination {
	policies := []sched.Policy{sched.MF, sched.SJF, sched.HRRN, sched.FIFO}
	predictors := []bool{false, true}

	var combos []Combination
	for _, p := range policies {
		for _, predict := range predictors {
			for k := 1; k <= 10; k++ {
				ratio := 0.2 * float64(k)
				combos = append(combos, Combination{Policy: p, Predict: predict, Ratio: ratio})
			}
		}
	}
	return combos
}

// Config is the optional YAML sweep-grid file accepted in place of
// DefaultCombinations, for runs that only want a subset of the full grid.
type Config struct {
	Combinations []ConfigCombination `yaml:"combinations"`
}

// ConfigCombination is one YAML-encoded grid entry.
type ConfigCombination struct {
	Policy  string  `yaml:"policy"`
	Predict bool    `yaml:"predict"`
	Ratio   float64 `yaml:"ratio"`
}

// LoadConfig parses a YAML sweep-grid file into Combinations.
func LoadConfig(path string) ([]Combination, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sweep: read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("sweep: parse config %s: %w", path, err)
	}

	combos := make([]Combination, 0, len(cfg.Combinations))
	for _, c := range cfg.Combinations {
		policy, err := sched.ParsePolicy(c.Policy)
		if err != nil {
			return nil, fmt.Errorf("sweep: config %s: %w", path, err)
		}
		combos = append(combos, Combination{Policy: policy, Predict: c.Predict, Ratio: c.Ratio})
	}
	return combos, nil
}

// Result is one sweep member's outcome: a run-correlation id, the
// combination, the path its result records were written to, and how many
// jobs were dropped.
type Result struct {
	RunID       string
	Combination Combination
	ResultPath  string
	Dropped     int
}

// Run loads the node file once and the job file once per predictor setting
// (timelimit and predict_time), then runs one independent sched.Simulation per
// combination concurrently via errgroup, writing one
// "<name>_simulation_result.txt" per member under outDir. Each member owns
// its own node fleet and job set: nothing is shared across goroutines
// except the read-only base trace (copied before each simulation).
func Run(ctx context.Context, nodesPath, jobsPath string, combos []Combination, outDir string) ([]Result, error) {
	baseNodes, err := trace.LoadNodes(nodesPath)
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}

	rawTimelimitJobs, err := trace.LoadJobs(jobsPath, false)
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}
	rawPredictJobs, err := trace.LoadJobs(jobsPath, true)
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("sweep: create output directory %s: %w", outDir, err)
	}

	results := make([]Result, len(combos))
	g, gctx := errgroup.WithContext(ctx)

	for i, combo := range combos {
		i, combo := i, combo
		g.Go(func() error {
			base := rawTimelimitJobs
			if combo.Predict {
				base = rawPredictJobs
			}

			nodes := cloneNodes(baseNodes)
			jobs := cloneJobs(base)
			jobs = trace.Normalize(jobs, combo.Ratio)

			runID := uuid.NewString()

			sim := sched.New(combo.Policy, nodes, jobs)
			if err := sim.Run(gctx); err != nil {
				return fmt.Errorf("sweep: combination %s: %w", combo.Name(), err)
			}

			path := filepath.Join(outDir, combo.Name()+"_simulation_result.txt")
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("sweep: create result file %s: %w", path, err)
			}
			defer f.Close()

			if err := report.WriteRecords(f, jobs); err != nil {
				return fmt.Errorf("sweep: write result file %s: %w", path, err)
			}

			simlog.WithComponent("sweep").Info().
				Str("run_id", runID).
				Str("combination", combo.Name()).
				Int("dropped", len(sim.Dropped)).
				Msg("sweep member finished")

			results[i] = Result{RunID: runID, Combination: combo, ResultPath: path, Dropped: len(sim.Dropped)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func cloneNodes(nodes []*domain.Node) []*domain.Node {
	out := make([]*domain.Node, len(nodes))
	for i, n := range nodes {
		out[i] = domain.NewNode(n.ID, n.Total)
	}
	return out
}

func cloneJobs(jobs []*domain.Job) []*domain.Job {
	out := make([]*domain.Job, len(jobs))
	for i, j := range jobs {
		out[i] = domain.NewJob(j.ID, j.SubmitTime, j.Timelimit, j.PredictTime, j.ExecutionTime, j.NodeNum, j.Req, j.Priority)
	}
	return out
}
