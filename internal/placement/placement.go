// Package placement implements the §4.3 placement decision: given one
// pending job and the current node set, choose node_num nodes and the
// earliest start time >= NOW such that every chosen node has enough free
// capacity throughout [start, start+predict_time).
package placement

import (
	"fmt"
	"sort"

	"github.com/cuemby/clustersim/internal/domain"
	"github.com/cuemby/clustersim/internal/reservation"
	"github.com/cuemby/clustersim/internal/resource"
)

// Outcome is the result of one Decide call.
type Outcome int

const (
	// Placed means job.StartTime == now; reservations were committed and
	// the job's instantaneous node state was updated.
	Placed Outcome = iota
	// Requeued means the earliest feasible start is in the future; the
	// job was reset (StartTime -1, AssignedNodes cleared) and should be
	// pushed back onto the arrivals queue keyed by its original
	// submit_time.
	Requeued
	// Dropped means fewer than node_num nodes have total capacity that
	// could ever admit the job; it is reported and never retried.
	Dropped
)

// Decide runs the full placement decision for job against nodes at the
// current simulated time now, mutating job and the chosen nodes' maps.
func Decide(job *domain.Job, nodes []*domain.Node, now int) Outcome {
	selected, ok := selectNodes(nodes, job.Req, job.NodeNum)
	if !ok {
		job.State = domain.StateDropped
		job.DropReason = fmt.Sprintf(
			"insufficient qualifying nodes: need %d, found %d (req=%+v)",
			job.NodeNum, len(selected), job.Req,
		)
		return Dropped
	}

	start := earliestStart(selected, job.Req, job.PredictTime, now)

	for _, n := range selected {
		n.Map.Reserve(job.Req, start, start+job.PredictTime)
	}

	if start == now {
		job.StartTime = start
		job.AssignedNodes = selected
		job.State = domain.StateRunning
		for _, n := range selected {
			n.StartJob(job)
		}
		return Placed
	}

	// The reservation just committed against a future start is tentative:
	// it is discarded when Rebuild() runs on the next tick (§4.3 note), so
	// no explicit undo is needed here.
	job.ResetPlacement()
	job.State = domain.StateArrived
	return Requeued
}

// selectNodes implements the worst-fit-by-cpu node selection: sort nodes
// by current Avail.CPU descending (stable), walk in that order accepting
// any node whose Total qualifies (Total >= req), and stop at the first
// node_num acceptances. It reports false if fewer than node_num nodes
// qualify.
func selectNodes(nodes []*domain.Node, req resource.Resource, nodeNum int) ([]*domain.Node, bool) {
	ordered := make([]*domain.Node, len(nodes))
	copy(ordered, nodes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Avail.CPU > ordered[j].Avail.CPU
	})

	selected := make([]*domain.Node, 0, nodeNum)
	for _, n := range ordered {
		if req.LessEq(n.Total) {
			selected = append(selected, n)
			if len(selected) == nodeNum {
				break
			}
		}
	}
	return selected, len(selected) == nodeNum
}

// earliestStart computes the smallest start >= now such that every node
// in nodes has avail(t) >= req throughout [start, start+predictTime). It
// panics if no such start exists before the +inf sentinel, which §7
// classifies as an invariant violation for a job that already passed
// qualification (the tail segment always has value total >= req, by
// construction of selectNodes).
func earliestStart(nodes []*domain.Node, req resource.Resource, predictTime, now int) int {
	var intervals []reservation.Interval
	for _, n := range nodes {
		intervals = append(intervals, n.Map.QueryInfeasibleIntervals(req, now)...)
	}

	breakpoints := map[int]struct{}{now: {}, reservation.Inf: {}}
	for _, iv := range intervals {
		breakpoints[iv.L] = struct{}{}
		breakpoints[iv.R] = struct{}{}
	}
	times := make([]int, 0, len(breakpoints))
	for t := range breakpoints {
		times = append(times, t)
	}
	sort.Ints(times)

	coverage := make([]int, len(times))
	for _, iv := range intervals {
		li := sort.SearchInts(times, iv.L)
		ri := sort.SearchInts(times, iv.R)
		coverage[li]++
		if ri < len(coverage) {
			coverage[ri]--
		}
	}
	for i := 1; i < len(coverage); i++ {
		coverage[i] += coverage[i-1]
	}

	start := times[0]
	for i := 0; i+1 < len(times); i++ {
		if coverage[i] != 0 {
			start = times[i+1]
			continue
		}
		if times[i+1]-start >= predictTime {
			return start
		}
	}

	panic("placement: no feasible start found before the +inf sentinel")
}
