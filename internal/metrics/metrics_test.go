package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsRegistered(t *testing.T) {
	// promauto registers automatically, so we just verify they exist by
	// writing a value and collecting it.
	LeaseAttempts.WithLabelValues("bound").Inc()
	LeaseOutcomes.WithLabelValues("bound").Inc()
	LeaseDuration.WithLabelValues("bound").Observe(1.5)
	OffersObserved.WithLabelValues("true").Inc()

	if got := testutil.ToFloat64(LeaseAttempts.WithLabelValues("bound")); got != 1 {
		t.Errorf("LeaseAttempts = %v, want 1", got)
	}
	if got := testutil.ToFloat64(OffersObserved.WithLabelValues("true")); got != 1 {
		t.Errorf("OffersObserved = %v, want 1", got)
	}
}

func TestMetricsNamespace(t *testing.T) {
	mfs, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	for _, mf := range mfs {
		name := mf.GetName()
		if strings.HasPrefix(name, "go_") ||
			strings.HasPrefix(name, "process_") ||
			strings.HasPrefix(name, "promhttp_") {
			continue
		}
		if !strings.HasPrefix(name, "dhcp4c_") {
			t.Errorf("metric %q does not have dhcp4c_ prefix", name)
		}
	}
}
