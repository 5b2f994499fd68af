// Package simmetrics exposes the simulator's behavior as Prometheus metrics.
// internal/sched observes directly into these collectors; cmd/clustersim
// only decides whether Handler is served.
package simmetrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// JobsPending tracks jobs currently sitting in the pending queue,
	// labeled by policy.
	JobsPending = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "clustersim_jobs_pending",
			Help: "Number of jobs currently pending placement, by policy",
		},
		[]string{"policy"},
	)

	// JobsRunning tracks jobs currently occupying node capacity.
	JobsRunning = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "clustersim_jobs_running",
			Help: "Number of jobs currently running, by policy",
		},
		[]string{"policy"},
	)

	// JobsPlacedTotal counts successful placements.
	JobsPlacedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clustersim_jobs_placed_total",
			Help: "Total number of jobs placed (start_time set), by policy",
		},
		[]string{"policy"},
	)

	// JobsDroppedTotal counts jobs reported as infeasible and dropped.
	JobsDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clustersim_jobs_dropped_total",
			Help: "Total number of jobs dropped for lacking qualifying nodes, by policy",
		},
		[]string{"policy"},
	)

	// PlacementLatency times a single placement decision (§4.3).
	PlacementLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clustersim_placement_latency_seconds",
			Help:    "Wall-clock time spent computing one placement decision",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ScheduleTickLatency times one full schedule() tick (§4.4).
	ScheduleTickLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clustersim_schedule_tick_latency_seconds",
			Help:    "Wall-clock time spent in one schedule() tick, by policy",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"policy"},
	)

	// WaitingTimeSeconds observes start_time - submit_time for every
	// placed job, in simulated seconds, by policy.
	WaitingTimeSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clustersim_waiting_time_seconds",
			Help:    "Observed wait time (simulated seconds) of placed jobs, by policy",
			Buckets: []float64{0, 10, 60, 300, 900, 3600, 14400, 86400},
		},
		[]string{"policy"},
	)

	// CPUUtilization is a CPU utilization gauge labeled by run name. It is
	// registered below, but no package in this module sets it.
	CPUUtilization = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "clustersim_cpu_utilization",
			Help: "CPU utilization over the measurement window, by run name",
		},
		[]string{"run"},
	)
)

func init() {
	prometheus.MustRegister(
		JobsPending,
		JobsRunning,
		JobsPlacedTotal,
		JobsDroppedTotal,
		PlacementLatency,
		ScheduleTickLatency,
		WaitingTimeSeconds,
		CPUUtilization,
	)
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a small helper for timing operations and observing them into a
// histogram.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed duration into histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// ObserveDurationVec records the elapsed duration into a labeled histogram.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	histogram.WithLabelValues(labels...).Observe(time.Since(t.start).Seconds())
}
