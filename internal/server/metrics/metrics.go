// Package metrics holds the Prometheus collectors of the account service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation labels.
const (
	OpRegister      = "register"
	OpLogin         = "login"
	OpResetRequest  = "reset_request"
	OpResetPassword = "reset_password"
	OpArchive       = "archive"
	OpExport        = "archive_export"
)

// Result labels.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

type Metrics struct {
	// AccountOps counts account operations by operation and result.
	AccountOps *prometheus.CounterVec

	// SessionsPurged counts expired sessions removed by the purge loop.
	SessionsPurged prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AccountOps: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "account_operations_total",
				Help: "Total number of account operations by operation and result",
			},
			[]string{"operation", "result"},
		),
		SessionsPurged: f.NewCounter(
			prometheus.CounterOpts{
				Name: "account_sessions_purged_total",
				Help: "Total number of expired sessions removed",
			},
		),
	}
}

// Observe records one operation outcome. A nil receiver is a no-op.
func (m *Metrics) Observe(op, result string) {
	if m == nil {
		return
	}
	m.AccountOps.WithLabelValues(op, result).Inc()
}

// Purged adds n removed sessions. A nil receiver is a no-op.
func (m *Metrics) Purged(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.SessionsPurged.Add(float64(n))
}
