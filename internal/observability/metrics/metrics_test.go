package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBotMetrics(reg)

	m.ObserveInbound("command")
	m.ObserveInbound("command")
	m.ObserveFeedEvent("modified")
	m.ObserveNotification("sent")
	m.ObserveCommit("ok")

	if got := testutil.ToFloat64(m.inboundTotal.WithLabelValues("command")); got != 2 {
		t.Errorf("inbound command count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.feedEventsTotal.WithLabelValues("modified")); got != 1 {
		t.Errorf("feed modified count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.notificationsTotal.WithLabelValues("sent")); got != 1 {
		t.Errorf("notifications sent count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.commitsTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("commit ok count = %v, want 1", got)
	}
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *BotMetrics
	m.ObserveInbound("text")
	m.ObserveFeedEvent("added")
	m.ObserveNotification("suppressed")
	m.ObserveCommit("failed")
}
