// Package report encodes and decodes the §6 per-job simulation result
// records, one line per job: "submit_time ended start_time execution_time
// node_num cpu_req".
package report

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/cuemby/clustersim/internal/domain"
)

// Record is one decoded output line.
type Record struct {
	SubmitTime    int
	Ended         bool
	StartTime     int
	ExecutionTime int
	NodeNum       int
	CPUReq        int
}

// WriteRecords writes one line per job in original trace order (by id),
// matching original_source's iteration order over the tasks vector.
// Dropped or never-placed jobs are written with ended=0, start_time=-1.
func WriteRecords(w io.Writer, jobs []*domain.Job) error {
	byID := make([]*domain.Job, len(jobs))
	copy(byID, jobs)
	sort.Slice(byID, func(i, j int) bool { return byID[i].ID < byID[j].ID })

	bw := bufio.NewWriter(w)
	for _, j := range byID {
		ended := 0
		if j.Ended {
			ended = 1
		}
		if _, err := fmt.Fprintf(bw, "%d %d %d %d %d %d\n",
			j.SubmitTime, ended, j.StartTime, j.ExecutionTime, j.NodeNum, j.Req.CPU); err != nil {
			return fmt.Errorf("report: write record for job %d: %w", j.ID, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("report: flush: %w", err)
	}
	return nil
}

// ReadRecords is the inverse of WriteRecords, used by internal/analyze.
func ReadRecords(r io.Reader) ([]Record, error) {
	var records []Record
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" {
			continue
		}
		var submitTime, ended, startTime, executionTime, nodeNum, cpuReq int
		if _, err := fmt.Sscan(text, &submitTime, &ended, &startTime, &executionTime, &nodeNum, &cpuReq); err != nil {
			return nil, fmt.Errorf("report: line %d: malformed record: %w", line, err)
		}
		records = append(records, Record{
			SubmitTime:    submitTime,
			Ended:         ended != 0,
			StartTime:     startTime,
			ExecutionTime: executionTime,
			NodeNum:       nodeNum,
			CPUReq:        cpuReq,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("report: reading records: %w", err)
	}
	return records, nil
}
