package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cuemby/clustersim/internal/report"
	"github.com/cuemby/clustersim/internal/sched"
	"github.com/cuemby/clustersim/internal/trace"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run one simulation over a node and job trace",
	Long: `Run a single discrete-event simulation under one queueing policy.

Examples:
  clustersim simulate --nodes nodes_info.txt --jobs jobs_info.txt --policy sjf --out result.txt
  clustersim simulate --nodes nodes_info.txt --jobs jobs_info.txt --policy hrrn --predict --ratio 0.5 --out result.txt`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().String("nodes", "", "Node inventory file (required)")
	simulateCmd.Flags().String("jobs", "", "Job trace file (required)")
	simulateCmd.Flags().String("policy", "fifo", "Queueing policy: fifo, sjf, hrrn, mf")
	simulateCmd.Flags().Bool("predict", false, "Use the predictor's predict_time column instead of timelimit")
	simulateCmd.Flags().Float64("ratio", 1.0, "Submit-time compression ratio")
	simulateCmd.Flags().String("out", "simulation_result.txt", "Output result file")
	_ = simulateCmd.MarkFlagRequired("nodes")
	_ = simulateCmd.MarkFlagRequired("jobs")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	nodesPath, _ := cmd.Flags().GetString("nodes")
	jobsPath, _ := cmd.Flags().GetString("jobs")
	policyName, _ := cmd.Flags().GetString("policy")
	usePredict, _ := cmd.Flags().GetBool("predict")
	ratio, _ := cmd.Flags().GetFloat64("ratio")
	outPath, _ := cmd.Flags().GetString("out")

	policy, err := sched.ParsePolicy(policyName)
	if err != nil {
		return err
	}

	nodes, err := trace.LoadNodes(nodesPath)
	if err != nil {
		return err
	}
	jobs, err := trace.LoadJobs(jobsPath, usePredict)
	if err != nil {
		return err
	}
	jobs = trace.Normalize(jobs, ratio)

	sim := sched.New(policy, nodes, jobs)
	if err := sim.Run(context.Background()); err != nil {
		return fmt.Errorf("simulate: %w", err)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("simulate: create output file %s: %w", outPath, err)
	}
	defer f.Close()

	if err := report.WriteRecords(f, jobs); err != nil {
		return fmt.Errorf("simulate: write output file %s: %w", outPath, err)
	}

	fmt.Printf("simulated %d jobs on %d nodes, %d dropped, results written to %s\n",
		len(jobs), len(nodes), len(sim.Dropped), outPath)
	return nil
}
