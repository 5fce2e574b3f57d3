// Package metrics defines the Prometheus metrics exposed by a dhcp4c client.
// All metrics use the "dhcp4c_" prefix.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dhcp4c"

var (
	// LeaseAttempts counts GetLease calls, by the state reached at exit:
	// bound, failed, or the state (init, selecting, requesting) in which a
	// timeout or socket error ended the exchange.
	LeaseAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lease_attempts_total",
		Help:      "Total GetLease attempts, by final state.",
	}, []string{"state"})

	// LeaseOutcomes counts the specific reason a GetLease call failed, or
	// "bound" on success.
	LeaseOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lease_outcomes_total",
		Help:      "Total GetLease outcomes, by reason (bound, timeout, nak, protocol_violation, socket_error, error).",
	}, []string{"reason"})

	// LeaseDuration tracks the wall-clock time of a GetLease call.
	LeaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "lease_duration_seconds",
		Help:      "GetLease call duration in seconds, by final state.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
	}, []string{"state"})

	// OffersObserved counts every reply read during SELECTING: "true" for
	// the awaited OFFER, "false" for one discarded for another xid, chaddr,
	// op or message type, and "malformed" for one that failed to decode.
	OffersObserved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "offers_observed_total",
		Help:      "Total OFFER packets observed while selecting, by whether they matched the pending transaction.",
	}, []string{"matched"})
)
