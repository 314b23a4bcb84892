package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CronJobMetrics tracks the outcome and duration of scheduled jobs. All
// methods are nil-safe so tests and wiring code can pass a nil collector.
type CronJobMetrics struct {
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
}

// NewCronJobMetrics registers the cron metrics on the provided registerer.
// A nil registerer yields a no-op instance.
func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Subsystem: "cron",
		Name:      "job_duration_seconds",
		Help:      "Duration of cron jobs in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "cron",
		Name:      "job_runs_total",
		Help:      "Cron job executions, by job and outcome.",
	}, []string{"job", "outcome"})
	reg.MustRegister(duration, outcomes)
	return &CronJobMetrics{duration: duration, outcomes: outcomes}
}

// ObserveDuration records the wall time of one run of the named job.
func (c *CronJobMetrics) ObserveDuration(job string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(jobLabel(job)).Observe(duration.Seconds())
}

// IncSuccess counts one successful run of the named job.
func (c *CronJobMetrics) IncSuccess(job string) {
	if c == nil || c.outcomes == nil {
		return
	}
	c.outcomes.WithLabelValues(jobLabel(job), "success").Inc()
}

// IncFailure counts one failed run of the named job.
func (c *CronJobMetrics) IncFailure(job string) {
	if c == nil || c.outcomes == nil {
		return
	}
	c.outcomes.WithLabelValues(jobLabel(job), "failure").Inc()
}

func jobLabel(job string) string {
	if job == "" {
		return "unknown"
	}
	return job
}
