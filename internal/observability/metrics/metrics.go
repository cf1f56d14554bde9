package metrics

import "github.com/prometheus/client_golang/prometheus"

// BotMetrics exposes counters for the order bot's two event sources.
type BotMetrics struct {
	inboundTotal       *prometheus.CounterVec
	feedEventsTotal    *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
	commitsTotal       *prometheus.CounterVec
}

func NewBotMetrics(reg prometheus.Registerer) *BotMetrics {
	m := &BotMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderbot",
			Subsystem: "chat",
			Name:      "inbound_total",
			Help:      "Total inbound chat messages",
		}, []string{"kind"}),
		feedEventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderbot",
			Subsystem: "feed",
			Name:      "events_total",
			Help:      "Total order change feed events",
		}, []string{"type"}),
		notificationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderbot",
			Subsystem: "notify",
			Name:      "notifications_total",
			Help:      "Status-change notification decisions",
		}, []string{"result"}),
		commitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderbot",
			Subsystem: "orders",
			Name:      "commits_total",
			Help:      "Order commit attempts",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.feedEventsTotal, m.notificationsTotal, m.commitsTotal)
	return m
}

func (m *BotMetrics) ObserveInbound(kind string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(kind).Inc()
}

func (m *BotMetrics) ObserveFeedEvent(eventType string) {
	if m == nil {
		return
	}
	m.feedEventsTotal.WithLabelValues(eventType).Inc()
}

func (m *BotMetrics) ObserveNotification(result string) {
	if m == nil {
		return
	}
	m.notificationsTotal.WithLabelValues(result).Inc()
}

func (m *BotMetrics) ObserveCommit(status string) {
	if m == nil {
		return
	}
	m.commitsTotal.WithLabelValues(status).Inc()
}
