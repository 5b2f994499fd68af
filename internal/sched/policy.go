package sched

import (
	"fmt"

	"github.com/cuemby/clustersim/internal/domain"
)

// Policy orders the pending queue (§4.4).
type Policy int

const (
	FIFO Policy = iota
	SJF
	HRRN
	MF
)

func (p Policy) String() string {
	switch p {
	case FIFO:
		return "fifo"
	case SJF:
		return "sjf"
	case HRRN:
		return "hrrn"
	case MF:
		return "mf"
	default:
		return "unknown"
	}
}

// ParsePolicy parses the CLI's --policy flag value.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "fifo":
		return FIFO, nil
	case "sjf":
		return SJF, nil
	case "hrrn":
		return HRRN, nil
	case "mf":
		return MF, nil
	default:
		return 0, fmt.Errorf("unknown policy %q (want one of fifo, sjf, hrrn, mf)", s)
	}
}

// score computes the policy key for a job maturing into the pending queue
// at the given simulated time. Smaller keys are served first.
func (p Policy) score(job *domain.Job, now int) float64 {
	switch p {
	case FIFO:
		return float64(job.SubmitTime)
	case SJF:
		return float64(job.PredictTime)
	case HRRN:
		waitTime := float64(now - job.SubmitTime)
		responseRatio := (float64(job.PredictTime) + waitTime) / float64(job.PredictTime)
		return -responseRatio
	case MF:
		return -float64(job.Priority)
	default:
		panic(fmt.Sprintf("sched: unhandled policy %v", p))
	}
}
