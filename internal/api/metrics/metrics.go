// Package metrics defines the custom Prometheus metrics of the blog API.
// All metrics register with the default registry on package load and are
// served on /metrics alongside the echoprometheus request metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "zaplanje"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login form submissions.
// Label:
//   - result: "success", "rejected" (provider or profile check failed) or "invalid" (form validation)
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// RegistrationsTotal counts registration form submissions.
// Label:
//   - result: "success", "rejected" or "invalid"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of author registrations, by result.",
	},
	[]string{"result"},
)

// TrackClientSessions exposes how many browser clients currently hold a
// session manager. Call it once at startup.
func TrackClientSessions(count func() int) {
	promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "client_sessions",
			Help:      "Number of browser clients with a live session manager.",
		},
		func() float64 { return float64(count()) },
	)
}

// ── Share metrics ─────────────────────────────────────────────────────────────

// SharesTotal counts share requests.
// Label:
//   - network: "facebook", "telegram", "twitter" or "general"
var SharesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shares_total",
		Help:      "Total number of share requests, by network.",
	},
	[]string{"network"},
)

// MetaRendersTotal counts pages rendered with post meta tags.
var MetaRendersTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "meta_renders_total",
		Help:      "Total number of post pages rendered with link-preview meta tags.",
	},
)
