// Package metrics provides Prometheus metrics for the reminder engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	RemindersFired prometheus.Counter
	SnoozeWakeups  prometheus.Counter
	NotifyFailures prometheus.Counter
	DosesLogged    *prometheus.CounterVec
	LowStockAlerts prometheus.Counter
	PollTicks      prometheus.Counter
	PendingSnoozes prometheus.Gauge
}

// New creates and registers all metrics on the given registerer. Passing
// nil uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		RemindersFired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reminders_fired_total",
			Help: "Total dose reminders fired",
		}),
		SnoozeWakeups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "snooze_wakeups_total",
			Help: "Total snoozed reminders re-fired after wake-up",
		}),
		NotifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notification_failures_total",
			Help: "Total failed notification dispatches",
		}),
		DosesLogged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "doses_logged_total",
			Help: "Total dose log writes by status",
		}, []string{"status"}),
		LowStockAlerts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "low_stock_alerts_total",
			Help: "Total low-stock alerts emitted",
		}),
		PollTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "poll_ticks_total",
			Help: "Total reminder poller ticks",
		}),
		PendingSnoozes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "snoozes_pending",
			Help: "Currently pending snooze entries",
		}),
	}

	reg.MustRegister(
		m.RemindersFired,
		m.SnoozeWakeups,
		m.NotifyFailures,
		m.DosesLogged,
		m.LowStockAlerts,
		m.PollTicks,
		m.PendingSnoozes,
	)

	return m
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
