package sched

import (
	"container/heap"

	"github.com/cuemby/clustersim/internal/domain"
)

// Each of the three §3 queues is a container/heap.Interface implementation
// keyed the way §4.4 specifies, with a job-id tiebreak so that simulations
// are reproducible (§9: "avoid comparing floats for equality").

type arrivalItem struct {
	job *domain.Job
	key int // submit_time
}

type arrivalQueue []*arrivalItem

func (q arrivalQueue) Len() int { return len(q) }
func (q arrivalQueue) Less(i, j int) bool {
	if q[i].key != q[j].key {
		return q[i].key < q[j].key
	}
	return q[i].job.ID < q[j].job.ID
}
func (q arrivalQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *arrivalQueue) Push(x any)        { *q = append(*q, x.(*arrivalItem)) }
func (q *arrivalQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
func (q arrivalQueue) Peek() *arrivalItem { return q[0] }

type pendingItem struct {
	job *domain.Job
	key float64 // policy score, smaller first
}

type pendingQueue []*pendingItem

func (q pendingQueue) Len() int { return len(q) }
func (q pendingQueue) Less(i, j int) bool {
	if q[i].key < q[j].key {
		return true
	}
	if q[j].key < q[i].key {
		return false
	}
	return q[i].job.ID < q[j].job.ID
}
func (q pendingQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *pendingQueue) Push(x any)   { *q = append(*q, x.(*pendingItem)) }
func (q *pendingQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

type runningItem struct {
	job *domain.Job
	key int // projected end time
}

type runningQueue []*runningItem

func (q runningQueue) Len() int { return len(q) }
func (q runningQueue) Less(i, j int) bool {
	if q[i].key != q[j].key {
		return q[i].key < q[j].key
	}
	return q[i].job.ID < q[j].job.ID
}
func (q runningQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *runningQueue) Push(x any)   { *q = append(*q, x.(*runningItem)) }
func (q *runningQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
func (q runningQueue) Peek() *runningItem { return q[0] }

// newArrivalQueue seeds a heap-ordered arrival queue from jobs, keyed by
// submit_time.
func newArrivalQueue(jobs []*domain.Job) *arrivalQueue {
	q := make(arrivalQueue, 0, len(jobs))
	for _, j := range jobs {
		q = append(q, &arrivalItem{job: j, key: j.SubmitTime})
	}
	heap.Init(&q)
	return &q
}
