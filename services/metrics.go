package services

import "github.com/prometheus/client_golang/prometheus"

var (
	eventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streak_events_total",
			Help: "Inbound message events by processing outcome",
		},
		[]string{"outcome"},
	)
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streak_notifications_total",
			Help: "Score-change DM notifications by delivery status",
		},
		[]string{"status"},
	)
	reconcilerDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streak_reconciler_deleted_total",
			Help: "Streak rows removed by the reconciler sweep",
		},
	)
)

const (
	outcomeScored        = "scored"
	outcomeDuplicate     = "duplicate"
	outcomeFiltered      = "filtered"
	outcomeMalformed     = "malformed"
	outcomeLookupFailed  = "lookup_failed"
	outcomePersistFailed = "persist_failed"
)

// InitMetrics registers the service metrics. Call this from main.go
func InitMetrics() {
	prometheus.MustRegister(eventsTotal)
	prometheus.MustRegister(notificationsTotal)
	prometheus.MustRegister(reconcilerDeleted)
}
