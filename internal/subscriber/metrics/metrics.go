package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SubscribersCreated  prometheus.Counter
	SubscribersReplaced prometheus.Counter
	SubscribersDeleted  prometheus.Counter
	ValidationFailures  prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		SubscribersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coregw_subscribers_created_total",
			Help: "Total number of subscriber records registered",
		}),
		SubscribersReplaced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coregw_subscribers_replaced_total",
			Help: "Total number of subscriber records replaced",
		}),
		SubscribersDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coregw_subscribers_deleted_total",
			Help: "Total number of subscriber records deleted",
		}),
		ValidationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coregw_subscriber_validation_failures_total",
			Help: "Total number of subscriber payloads rejected by validation",
		}),
	}
}

func (m *Metrics) IncrementCreated() {
	if m != nil {
		m.SubscribersCreated.Inc()
	}
}

func (m *Metrics) IncrementReplaced() {
	if m != nil {
		m.SubscribersReplaced.Inc()
	}
}

func (m *Metrics) IncrementDeleted() {
	if m != nil {
		m.SubscribersDeleted.Inc()
	}
}

func (m *Metrics) IncrementValidationFailures() {
	if m != nil {
		m.ValidationFailures.Inc()
	}
}
