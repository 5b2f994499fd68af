// Package analyze computes post-run summary metrics from a set of output
// records, matching original_source's analysis_simulation_result.
package analyze

import (
	"github.com/cuemby/clustersim/internal/report"
)

// slowdownFloor matches original_source's max(execution_time, 60).
const slowdownFloor = 60

// Metrics summarizes one simulation run over the interval [l, r).
type Metrics struct {
	MeanWaitingTime     float64
	MeanBoundedSlowdown float64
	CPUUtilization      float64
}

// Compute replicates analysis_simulation_result's exact semantics: only
// ended jobs contribute to MeanWaitingTime/MeanBoundedSlowdown; CPU-time
// accumulation additionally requires the job's run interval to overlap
// [l, r); utilization divides accumulated CPU-seconds by
// totalCPU * (r - l).
func Compute(records []report.Record, totalCPU int, l, r int) Metrics {
	var (
		endedCount     int
		waitingSum     float64
		slowdownSum    float64
		cpuUsedSeconds float64
	)

	for _, rec := range records {
		if !rec.Ended {
			continue
		}
		endedCount++
		waitingSum += float64(rec.StartTime - rec.SubmitTime)

		floor := rec.ExecutionTime
		if floor < slowdownFloor {
			floor = slowdownFloor
		}
		slowdownSum += float64(rec.StartTime-rec.SubmitTime+floor) / float64(floor)

		if rec.StartTime+rec.ExecutionTime < l || rec.StartTime > r {
			continue
		}
		overlapStart := max(l, rec.StartTime)
		overlapEnd := min(r, rec.StartTime+rec.ExecutionTime)
		cpuUsedSeconds += float64(rec.NodeNum*rec.CPUReq) * float64(overlapEnd-overlapStart)
	}

	var m Metrics
	if endedCount > 0 {
		m.MeanWaitingTime = waitingSum / float64(endedCount)
		m.MeanBoundedSlowdown = slowdownSum / float64(endedCount)
	}
	cpuTotalSeconds := float64(totalCPU) * float64(r-l)
	if cpuTotalSeconds > 0 {
		m.CPUUtilization = cpuUsedSeconds / cpuTotalSeconds
	}
	return m
}
