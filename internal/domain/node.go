package domain

import (
	"github.com/cuemby/clustersim/internal/reservation"
	"github.com/cuemby/clustersim/internal/resource"
)

// Node is a compute node: immutable identity and total capacity, mutable
// instantaneous avail and running-job set, plus its reservation map.
type Node struct {
	ID    int
	Total resource.Resource

	// Avail is the instantaneous free capacity at NOW -- committed state,
	// mutated only by StartJob/EndJob, never by planning.
	Avail resource.Resource

	// Running is the set of jobs currently occupying this node.
	Running map[int]*Job

	// Map is the node's planning-time reservation map, rebuilt from
	// Running at the start of every schedule() tick.
	Map *reservation.Map
}

// NewNode creates a Node with full instantaneous availability.
func NewNode(id int, total resource.Resource) *Node {
	return &Node{
		ID:      id,
		Total:   total,
		Avail:   total,
		Running: make(map[int]*Job),
		Map:     reservation.New(total),
	}
}

// Rebuild replays the node's reservation map from its running set, using
// each running job's Timelimit (pessimistic -- §4.2's deliberate
// asymmetry: a running job might overrun its prediction up to its limit,
// so that space is never promised away to a new placement).
func (n *Node) Rebuild() {
	reservations := make([]reservation.Reservation, 0, len(n.Running))
	for _, job := range n.Running {
		reservations = append(reservations, reservation.Reservation{
			Start: job.StartTime,
			End:   job.StartTime + job.Timelimit,
			Req:   job.Req,
		})
	}
	n.Map.Rebuild(reservations)
}

// StartJob commits a job to this node's instantaneous state: decrements
// Avail and adds the job to Running. The reservation map is not touched
// here -- it was already updated by the placement decision's Reserve call
// against PredictTime, and will be rebuilt pessimistically against
// Timelimit on the next tick.
func (n *Node) StartJob(job *Job) {
	n.Avail = n.Avail.Sub(job.Req)
	n.Running[job.ID] = job
}

// EndJob releases a job's instantaneous claim on this node.
func (n *Node) EndJob(job *Job) {
	n.Avail = n.Avail.Add(job.Req)
	delete(n.Running, job.ID)
}
