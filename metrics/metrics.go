// Package metrics exposes the constraint machine's Prometheus
// instrumentation: counters and histograms a caller registers once and
// passes down to constraintmachine.Machine so validate/dispatch/rejection
// counts show up on whatever registry the host process already runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Set is the fixed collection of metrics the engine reports. It is built
// once, against a caller-supplied registry, and is safe for concurrent use
// by however many goroutines call Machine.Validate.
type Set struct {
	ValidateTotal     *prometheus.CounterVec
	ValidateDuration  prometheus.Histogram
	RejectionsByKind  *prometheus.CounterVec
	DispatchedPairs   prometheus.Counter
	StoredAtomsTotal  prometheus.Counter
}

// NewSet constructs a Set and registers every metric against reg.
func NewSet(reg prometheus.Registerer) *Set {
	s := &Set{
		ValidateTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cm",
			Name:      "validate_total",
			Help:      "Total atoms passed to Machine.Validate, partitioned by outcome.",
		}, []string{"outcome"}),
		ValidateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "cm",
			Name:      "validate_duration_seconds",
			Help:      "Wall-clock duration of Machine.Validate calls.",
			Buckets:   prometheus.DefBuckets,
		}),
		RejectionsByKind: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cm",
			Name:      "rejections_total",
			Help:      "Rejected atoms, partitioned by cmerror.Kind.",
		}, []string{"kind"}),
		DispatchedPairs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cm",
			Name:      "dispatched_pairs_total",
			Help:      "Consuming/producing PUSH pairs successfully dispatched through a transition procedure.",
		}),
		StoredAtomsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cm",
			Name:      "stored_atoms_total",
			Help:      "Atoms committed to the engine store after a successful validation.",
		}),
	}
	reg.MustRegister(s.ValidateTotal, s.ValidateDuration, s.RejectionsByKind, s.DispatchedPairs, s.StoredAtomsTotal)
	return s
}

// ObserveRejection records a failed validation under kind.
func (s *Set) ObserveRejection(kind string) {
	if s == nil {
		return
	}
	s.ValidateTotal.WithLabelValues("rejected").Inc()
	s.RejectionsByKind.WithLabelValues(kind).Inc()
}

// ObserveAccepted records a successful validation.
func (s *Set) ObserveAccepted() {
	if s == nil {
		return
	}
	s.ValidateTotal.WithLabelValues("accepted").Inc()
}
