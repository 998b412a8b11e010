package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Mutation results.
const (
	ResultOK         = "ok"
	ResultRejected   = "rejected"
	ResultPersistErr = "persist_error"
)

// Collectors groups the service's prometheus instruments.
type Collectors struct {
	Mutations       *prometheus.CounterVec
	SnapshotSave    prometheus.Histogram
	PersistFailures prometheus.Counter
	Questions       prometheus.Gauge
}

// New registers collectors on reg. A nil registerer yields unregistered
// collectors, which tests use to avoid global state.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Name:      "question_mutations_total",
			Help:      "Create/edit operations by outcome.",
		}, []string{"op", "result"}),
		SnapshotSave: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quiz",
			Name:      "snapshot_save_seconds",
			Help:      "Latency of full snapshot writes.",
			Buckets:   prometheus.DefBuckets,
		}),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quiz",
			Name:      "snapshot_save_failures_total",
			Help:      "Snapshot writes that failed after memory was already mutated.",
		}),
		Questions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quiz",
			Name:      "questions",
			Help:      "Questions currently held in memory.",
		}),
	}
	if reg != nil {
		reg.MustRegister(c.Mutations, c.SnapshotSave, c.PersistFailures, c.Questions)
	}
	return c
}

// ObserveMutation counts a create/edit outcome.
func (c *Collectors) ObserveMutation(op, result string) {
	if c == nil {
		return
	}
	c.Mutations.WithLabelValues(op, result).Inc()
}

// ObserveSave records snapshot latency and failures.
func (c *Collectors) ObserveSave(started time.Time, err error) {
	if c == nil {
		return
	}
	c.SnapshotSave.Observe(time.Since(started).Seconds())
	if err != nil {
		c.PersistFailures.Inc()
	}
}

// SetQuestions updates the in-memory question gauge.
func (c *Collectors) SetQuestions(n int) {
	if c == nil {
		return
	}
	c.Questions.Set(float64(n))
}
