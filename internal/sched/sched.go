// Package sched implements the discrete-event scheduler event loop
// (§4.4): a single-threaded driver holding three priority queues
// (arrivals, pending, running), a virtual clock, and a policy selector.
package sched

import (
	"container/heap"
	"context"

	"github.com/cuemby/clustersim/internal/domain"
	"github.com/cuemby/clustersim/internal/placement"
	"github.com/cuemby/clustersim/pkg/simlog"
	"github.com/cuemby/clustersim/pkg/simmetrics"
	"github.com/rs/zerolog"
)

// scheduleTime is the fixed per-tick clock advance (§4.4).
const scheduleTime = 1

// Simulation drives one independent run of the discrete-event scheduler
// over a fixed node fleet and job trace under a single policy. It is not
// safe for concurrent use -- one tick mutates shared node and job state
// in place (§5).
type Simulation struct {
	Policy Policy
	Nodes  []*domain.Node
	Jobs   []*domain.Job

	Now int

	arrivals *arrivalQueue
	pending  *pendingQueue
	running  *runningQueue

	logger zerolog.Logger

	Dropped []*domain.Job
}

// New builds a Simulation ready to Run. The virtual clock starts at the
// smallest submit_time among jobs, per §4.4.
func New(policy Policy, nodes []*domain.Node, jobs []*domain.Job) *Simulation {
	arrivals := newArrivalQueue(jobs)
	now := 0
	if len(jobs) > 0 {
		now = arrivals.Peek().key
	}

	return &Simulation{
		Policy:   policy,
		Nodes:    nodes,
		Jobs:     jobs,
		Now:      now,
		arrivals: arrivals,
		pending:  &pendingQueue{},
		running:  &runningQueue{},
		logger:   simlog.WithPolicy(policy.String()),
	}
}

// Done reports whether all three queues are empty -- the §4.4 termination
// condition.
func (s *Simulation) Done() bool {
	return s.arrivals.Len() == 0 && s.pending.Len() == 0 && s.running.Len() == 0
}

// Run drives the simulation to completion. It checks ctx only between
// ticks -- never mid-tick (§5: no suspension points inside one
// simulation) -- so a cancelled context stops cleanly but does not
// interrupt an in-flight schedule() call.
func (s *Simulation) Run(ctx context.Context) error {
	for !s.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.tick()
	}
	return nil
}

// tick performs one schedule() cycle (§4.4).
func (s *Simulation) tick() {
	timer := simmetrics.NewTimer()
	defer timer.ObserveDurationVec(simmetrics.ScheduleTickLatency, s.Policy.String())

	s.matureArrivals()
	s.reapCompletions()

	if s.pending.Len() == 0 {
		s.Now += scheduleTime
		return
	}

	for _, n := range s.Nodes {
		n.Rebuild()
	}

	for s.pending.Len() > 0 {
		item := heap.Pop(s.pending).(*pendingItem)
		s.place(item.job)
	}

	s.Now += scheduleTime
}

// matureArrivals pops every arrival with submit_time <= Now and pushes it
// onto the pending queue keyed by the active policy's score.
func (s *Simulation) matureArrivals() {
	for s.arrivals.Len() > 0 && s.arrivals.Peek().key <= s.Now {
		item := heap.Pop(s.arrivals).(*arrivalItem)
		job := item.job
		job.State = domain.StatePending
		heap.Push(s.pending, &pendingItem{job: job, key: s.Policy.score(job, s.Now)})
	}
	simmetrics.JobsPending.WithLabelValues(s.Policy.String()).Set(float64(s.pending.Len()))
}

// reapCompletions pops every running job whose projected end time has
// arrived and ends it.
func (s *Simulation) reapCompletions() {
	for s.running.Len() > 0 && s.running.Peek().key <= s.Now {
		item := heap.Pop(s.running).(*runningItem)
		job := item.job
		for _, n := range job.AssignedNodes {
			n.EndJob(job)
		}
		job.Ended = true
		job.State = domain.StateEnded
		s.logger.Debug().Int("job_id", job.ID).Int("now", s.Now).Msg("job ended")
	}
	simmetrics.JobsRunning.WithLabelValues(s.Policy.String()).Set(float64(s.running.Len()))
}

// place runs the §4.3 placement decision for one pending job and routes
// it to the running queue, back to arrivals, or to the dropped list.
func (s *Simulation) place(job *domain.Job) {
	timer := simmetrics.NewTimer()
	outcome := placement.Decide(job, s.Nodes, s.Now)
	timer.ObserveDuration(simmetrics.PlacementLatency)

	switch outcome {
	case placement.Placed:
		heap.Push(s.running, &runningItem{job: job, key: job.StartTime + job.ExecutionTime})
		simmetrics.JobsPlacedTotal.WithLabelValues(s.Policy.String()).Inc()
		simmetrics.WaitingTimeSeconds.WithLabelValues(s.Policy.String()).
			Observe(float64(job.StartTime - job.SubmitTime))
		s.logger.Info().Int("job_id", job.ID).Int("start_time", job.StartTime).Msg("job placed")
	case placement.Requeued:
		heap.Push(s.arrivals, &arrivalItem{job: job, key: job.SubmitTime})
	case placement.Dropped:
		s.Dropped = append(s.Dropped, job)
		simmetrics.JobsDroppedTotal.WithLabelValues(s.Policy.String()).Inc()
		s.logger.Warn().Int("job_id", job.ID).Str("reason", job.DropReason).Msg("job dropped")
	}
}
