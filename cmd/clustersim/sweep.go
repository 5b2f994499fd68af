package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cuemby/clustersim/internal/sweep"
	"github.com/cuemby/clustersim/pkg/simlog"
	"github.com/cuemby/clustersim/pkg/simmetrics"
	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the full policy x predictor x ratio combination grid",
	Long: `Run all 80 combinations (4 policies x 2 predictors x 10 ratios) against
one trace, one independent simulation per combination.

Example:
  clustersim sweep --nodes nodes_info.txt --jobs jobs_info.txt --out-dir results/`,
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().String("nodes", "", "Node inventory file (required)")
	sweepCmd.Flags().String("jobs", "", "Job trace file (required)")
	sweepCmd.Flags().String("out-dir", "results", "Directory to write per-combination result files")
	sweepCmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address for the duration of the sweep (optional)")
	sweepCmd.Flags().String("config", "", "YAML file naming a subset of combinations to run (default: the full 80-combination grid)")
	_ = sweepCmd.MarkFlagRequired("nodes")
	_ = sweepCmd.MarkFlagRequired("jobs")
}

func runSweep(cmd *cobra.Command, args []string) error {
	nodesPath, _ := cmd.Flags().GetString("nodes")
	jobsPath, _ := cmd.Flags().GetString("jobs")
	outDir, _ := cmd.Flags().GetString("out-dir")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	configPath, _ := cmd.Flags().GetString("config")

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", simmetrics.Handler())
		srv := &http.Server{Addr: metricsAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				simlog.WithComponent("sweep").Error().Err(err).Msg("metrics server error")
			}
		}()
		defer srv.Close()
		fmt.Printf("metrics endpoint: http://%s/metrics\n", metricsAddr)
	}

	combos := sweep.DefaultCombinations()
	if configPath != "" {
		loaded, err := sweep.LoadConfig(configPath)
		if err != nil {
			return err
		}
		combos = loaded
	}

	results, err := sweep.Run(context.Background(), nodesPath, jobsPath, combos, outDir)
	if err != nil {
		return fmt.Errorf("sweep: %w", err)
	}

	fmt.Printf("ran %d combinations, results written to %s\n", len(results), outDir)
	return nil
}
