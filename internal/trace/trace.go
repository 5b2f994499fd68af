// Package trace loads node inventories and job workloads from the §6
// plain-text input formats and normalizes job timing before a run.
package trace

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/cuemby/clustersim/internal/domain"
	"github.com/cuemby/clustersim/internal/resource"
)

// LoadNodes parses "<cpu> <mem> <count>" records to EOF, expanding each
// into count sequential-id nodes in file order.
func LoadNodes(path string) ([]*domain.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trace: open node file %s: %w", path, err)
	}
	defer f.Close()

	var nodes []*domain.Node
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" {
			continue
		}
		var cpu, mem, count int
		if _, err := fmt.Sscan(text, &cpu, &mem, &count); err != nil {
			return nil, fmt.Errorf("trace: %s:%d: malformed node record: %w", path, line, err)
		}
		if cpu <= 0 {
			return nil, fmt.Errorf("trace: %s:%d: cpu must be positive, got %d", path, line, cpu)
		}
		if mem <= 0 {
			return nil, fmt.Errorf("trace: %s:%d: mem must be positive, got %d", path, line, mem)
		}
		if count <= 0 {
			return nil, fmt.Errorf("trace: %s:%d: count must be positive, got %d", path, line, count)
		}
		for i := 0; i < count; i++ {
			nodes = append(nodes, domain.NewNode(len(nodes)+1, resource.Resource{CPU: cpu, Mem: mem}))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("trace: reading %s: %w", path, err)
	}
	return nodes, nil
}

// LoadJobs parses "<submit_time> <priority> <timelimit> <predict_lgb>
// <execution_time> <node_num> <cpu_req>" records, dividing cpu_req across
// node_num and choosing predict_time per usePredict. Ids are assigned
// sequentially in file order, before Normalize sorts by submit_time.
func LoadJobs(path string, usePredict bool) ([]*domain.Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trace: open job file %s: %w", path, err)
	}
	defer f.Close()

	var jobs []*domain.Job
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" {
			continue
		}
		var submitTime, priority, timelimit, predictLgb, executionTime, nodeNum, cpuReq int
		_, err := fmt.Sscan(text, &submitTime, &priority, &timelimit, &predictLgb, &executionTime, &nodeNum, &cpuReq)
		if err != nil {
			return nil, fmt.Errorf("trace: %s:%d: malformed job record: %w", path, line, err)
		}
		if nodeNum <= 0 {
			return nil, fmt.Errorf("trace: %s:%d: node_num must be positive, got %d", path, line, nodeNum)
		}
		cpuReq /= nodeNum

		predictTime := timelimit
		if usePredict {
			predictTime = predictLgb
		}

		if executionTime > timelimit {
			return nil, fmt.Errorf("trace: %s:%d: execution_time %d exceeds timelimit %d", path, line, executionTime, timelimit)
		}
		if predictTime < 1 || predictTime > timelimit {
			return nil, fmt.Errorf("trace: %s:%d: predict_time %d out of range [1, %d]", path, line, predictTime, timelimit)
		}

		job := domain.NewJob(len(jobs)+1, submitTime, timelimit, predictTime, executionTime, nodeNum,
			resource.Resource{CPU: cpuReq}, priority)
		jobs = append(jobs, job)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("trace: reading %s: %w", path, err)
	}
	return jobs, nil
}

// Normalize sorts jobs by submit_time (stable, id tiebreak for
// reproducibility), rebases the earliest submit_time to zero, and divides
// by ratio, rounding to the nearest integer.
func Normalize(jobs []*domain.Job, ratio float64) []*domain.Job {
	if len(jobs) == 0 {
		return jobs
	}

	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].SubmitTime != jobs[j].SubmitTime {
			return jobs[i].SubmitTime < jobs[j].SubmitTime
		}
		return jobs[i].ID < jobs[j].ID
	})

	start := jobs[0].SubmitTime
	for _, j := range jobs {
		j.SubmitTime = int(math.Round(float64(j.SubmitTime-start) / ratio))
	}
	return jobs
}
