package main

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cuemby/clustersim/internal/analyze"
	"github.com/cuemby/clustersim/internal/report"
	"github.com/cuemby/clustersim/internal/sweep"
	"github.com/cuemby/clustersim/internal/trace"
	"github.com/cuemby/clustersim/pkg/simlog"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze INTERVAL_DAYS",
	Short: "Compute summary metrics for a sweep's result files",
	Long: `Compute mean waiting time, mean bounded slowdown, and CPU utilization
over a measurement window sized by the interval (in days) for each of the
80 policy x predictor x ratio combinations.

Example:
  clustersim analyze 7 --nodes nodes_info.txt --results-dir results/ --out-dir analysis/`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("nodes", "", "Node inventory file (required, for total cpu capacity)")
	analyzeCmd.Flags().String("results-dir", "results", "Directory holding <name>_simulation_result.txt files")
	analyzeCmd.Flags().String("out-dir", "analysis", "Directory to write <name>_analysis_result.txt files")
	_ = analyzeCmd.MarkFlagRequired("nodes")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	intervalDays, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("analyze: interval_days must be an integer: %w", err)
	}

	nodesPath, _ := cmd.Flags().GetString("nodes")
	resultsDir, _ := cmd.Flags().GetString("results-dir")
	outDir, _ := cmd.Flags().GetString("out-dir")

	nodes, err := trace.LoadNodes(nodesPath)
	if err != nil {
		return err
	}
	totalCPU := 0
	for _, n := range nodes {
		totalCPU += n.Total.CPU
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("analyze: create output directory %s: %w", outDir, err)
	}

	logger := simlog.WithComponent("analyze")

	for _, combo := range sweep.DefaultCombinations() {
		name := combo.Name()
		resultPath := filepath.Join(resultsDir, name+"_simulation_result.txt")

		f, err := os.Open(resultPath)
		if err != nil {
			logger.Warn().Str("file", resultPath).Msg("result file not found, skipping")
			continue
		}
		records, err := report.ReadRecords(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("analyze: %s: %w", resultPath, err)
		}

		k := math.Round(combo.Ratio / 0.2)
		r := int(60 * 60 * 24 * float64(intervalDays) / (0.2 * k))
		metrics := analyze.Compute(records, totalCPU, 0, r)

		outPath := filepath.Join(outDir, name+"_analysis_result.txt")
		out, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("analyze: create %s: %w", outPath, err)
		}
		fmt.Fprintf(out, "avg_pending_time: %v\n", metrics.MeanWaitingTime)
		fmt.Fprintf(out, "avg_bounded_slowdown: %v\n", metrics.MeanBoundedSlowdown)
		fmt.Fprintf(out, "cpu_utilization: %v\n", metrics.CPUUtilization)
		out.Close()
	}

	fmt.Printf("analysis written to %s\n", outDir)
	return nil
}
