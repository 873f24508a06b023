// Package metrics exposes the prometheus counters the error taxonomy in
// spec.md section 7 calls for: NonMember drops and capacity evictions are
// explicitly "counted in telemetry" rather than surfaced as hard failures.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters a single ConsensusEngine instance reports.
// Each instance is built against its own registry so multiple engines -
// one per test case, or one per node in an in-process cluster - can coexist
// without colliding on the default global registry.
type Metrics struct {
	nonMemberDropped  prometheus.Counter
	capacityEviction  prometheus.Counter
	prepareReached    prometheus.Counter
	commitReached     prometheus.Counter
	callbackErrors    *prometheus.CounterVec
}

// NewMetrics registers and returns a fresh Metrics bound to reg. Pass
// prometheus.NewRegistry() for an isolated instance, or
// prometheus.DefaultRegisterer for a process-wide singleton.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		nonMemberDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "rbcast_nonmember_dropped_total",
			Help: "Votes dropped because the sender was not a member of the instance's membership snapshot.",
		}),
		capacityEviction: factory.NewCounter(prometheus.CounterOpts{
			Name: "rbcast_capacity_eviction_total",
			Help: "Consensus contexts evicted from the bounded context store, committed or not.",
		}),
		prepareReached: factory.NewCounter(prometheus.CounterOpts{
			Name: "rbcast_prepare_quorum_reached_total",
			Help: "Number of instances that reached prepare quorum.",
		}),
		commitReached: factory.NewCounter(prometheus.CounterOpts{
			Name: "rbcast_commit_quorum_reached_total",
			Help: "Number of instances that reached commit quorum.",
		}),
		callbackErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rbcast_callback_errors_total",
			Help: "Application callback failures, labeled by hook name.",
		}, []string{"hook"}),
	}
}

func (m *Metrics) NonMemberDropped() {
	if m == nil {
		return
	}
	m.nonMemberDropped.Inc()
}

func (m *Metrics) CapacityEviction() {
	if m == nil {
		return
	}
	m.capacityEviction.Inc()
}

func (m *Metrics) PrepareQuorumReached() {
	if m == nil {
		return
	}
	m.prepareReached.Inc()
}

func (m *Metrics) CommitQuorumReached() {
	if m == nil {
		return
	}
	m.commitReached.Inc()
}

func (m *Metrics) CallbackError(hook string) {
	if m == nil {
		return
	}
	m.callbackErrors.WithLabelValues(hook).Inc()
}
