package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, name, label, value string) float64 {
	t.Helper()

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestSignupsCancelledCountsByStatus(t *testing.T) {
	before := counterValue(t, "dealdesk_signups_cancelled_total", "status", "clawback")

	SignupsCancelled.WithLabelValues("clawback").Inc()

	if got := counterValue(t, "dealdesk_signups_cancelled_total", "status", "clawback"); got != before+1 {
		t.Fatalf("clawback cancellations = %v, want %v", got, before+1)
	}
}

func TestDealsEvaluatedIsRegistered(t *testing.T) {
	DealsEvaluated.WithLabelValues("false").Inc()

	if got := counterValue(t, "dealdesk_deals_evaluated_total", "saved", "false"); got < 1 {
		t.Fatalf("expected deals evaluated counter to be exported, got %v", got)
	}
}
