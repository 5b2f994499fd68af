// Package domain holds the Job and Node entities shared by the placement
// decision and the scheduler event loop (§3 of the design).
package domain

import "github.com/cuemby/clustersim/internal/resource"

// State is a job's position in the §3 lifecycle state machine:
// FUTURE -> ARRIVED -> PENDING -> RUNNING -> ENDED.
type State int

const (
	StateFuture State = iota
	StateArrived
	StatePending
	StateRunning
	StateEnded
	StateDropped
)

func (s State) String() string {
	switch s {
	case StateFuture:
		return "future"
	case StateArrived:
		return "arrived"
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateEnded:
		return "ended"
	case StateDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Job is one unit of work from the trace. Fields are mutated in place by
// internal/sched and internal/placement as the job moves through its
// lifecycle; a Job is owned by the trace for the run's duration and
// referenced, never copied, by the scheduler's queues.
type Job struct {
	ID int

	SubmitTime int
	Timelimit  int
	// PredictTime is the planning estimate in [1, Timelimit], used for new
	// placements (optimistic). Never exceeds Timelimit.
	PredictTime int
	// ExecutionTime is the ground-truth runtime, <= Timelimit.
	ExecutionTime int

	NodeNum  int
	Req      resource.Resource
	Priority int

	State State

	// StartTime is -1 until the job is placed.
	StartTime int
	// AssignedNodes is empty until the job is placed.
	AssignedNodes []*Node
	Ended         bool

	// DropReason is set when the job is dropped for lacking qualifying
	// nodes (§7 "infeasible job"). Empty otherwise. Not part of the §6
	// output record wire format; carried for diagnostics only.
	DropReason string
}

// NewJob constructs a Job in the FUTURE state with StartTime unset.
func NewJob(id, submitTime, timelimit, predictTime, executionTime, nodeNum int, req resource.Resource, priority int) *Job {
	return &Job{
		ID:            id,
		SubmitTime:    submitTime,
		Timelimit:     timelimit,
		PredictTime:   predictTime,
		ExecutionTime: executionTime,
		NodeNum:       nodeNum,
		Req:           req,
		Priority:      priority,
		State:         StateFuture,
		StartTime:     -1,
	}
}

// ResetPlacement clears a tentative/failed placement, returning the job to
// the ARRIVED-eligible state described in §4.3's re-queue rule.
func (j *Job) ResetPlacement() {
	j.AssignedNodes = nil
	j.StartTime = -1
}
