// Package metrics defines Prometheus metrics for the network-state proxy.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for proxied requests.
const (
	OutcomeOK          = "ok"
	OutcomeTimeout     = "timeout"
	OutcomeUnavailable = "unavailable"
)

type Metrics struct {
	proxyRequests *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		proxyRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coregw_netstate_requests_total",
				Help: "Total network-state proxy requests by upstream endpoint and outcome.",
			},
			[]string{"endpoint", "outcome"},
		),
	}
}

func (m *Metrics) IncrementRequest(endpoint, outcome string) {
	if m != nil {
		m.proxyRequests.WithLabelValues(endpoint, outcome).Inc()
	}
}
