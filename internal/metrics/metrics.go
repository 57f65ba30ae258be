// Package metrics owns the Prometheus registry and the collectors used by the
// hub and the announcement pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "resultboard"

// Failure reasons reported on DeliveryFailures.
const (
	ReasonWrite     = "write"
	ReasonQueueFull = "queue_full"
)

// NewRegistry creates a Prometheus registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler returns an http.Handler that serves Prometheus metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Hub holds the connection registry metrics.
type Hub struct {
	ActiveConnections prometheus.Gauge
	Broadcasts        prometheus.Counter
	DeliveryFailures  *prometheus.CounterVec
}

func NewHub(reg prometheus.Registerer) *Hub {
	m := &Hub{
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "active_connections",
			Help:      "Number of registered viewer connections.",
		}),
		Broadcasts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "broadcasts_total",
			Help:      "Total number of messages fanned out to viewers.",
		}),
		DeliveryFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "delivery_failures_total",
			Help:      "Viewer connections dropped because a message could not be delivered.",
		}, []string{"reason"}),
	}

	reg.MustRegister(m.ActiveConnections, m.Broadcasts, m.DeliveryFailures)
	return m
}

// Announce holds the ingestion metrics.
type Announce struct {
	Announcements *prometheus.CounterVec
}

func NewAnnounce(reg prometheus.Registerer) *Announce {
	m := &Announce{
		Announcements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "announcements_total",
			Help:      "Announcements accepted, by message type.",
		}, []string{"type"}),
	}

	reg.MustRegister(m.Announcements)
	return m
}
