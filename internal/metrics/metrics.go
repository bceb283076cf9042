package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the room service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	RoomsActive  prometheus.Gauge
	RoomsCreated prometheus.Counter
	TimersActive prometheus.Gauge
	Connections  prometheus.Gauge
	Events       *prometheus.CounterVec
	EventErrors  *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RoomsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quizroom",
			Subsystem: "rooms",
			Name:      "active",
			Help:      "Rooms currently registered",
		}),
		RoomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quizroom",
			Subsystem: "rooms",
			Name:      "created_total",
			Help:      "Rooms created since start",
		}),
		TimersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quizroom",
			Subsystem: "timers",
			Name:      "active",
			Help:      "Running room countdowns",
		}),
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quizroom",
			Subsystem: "ws",
			Name:      "connections",
			Help:      "Open websocket connections",
		}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quizroom",
			Subsystem: "ws",
			Name:      "events_total",
			Help:      "Inbound websocket events by name",
		}, []string{"event"}),
		EventErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quizroom",
			Subsystem: "ws",
			Name:      "event_errors_total",
			Help:      "Rejected websocket events by name and code",
		}, []string{"event", "code"}),
	}

	m.registry.MustRegister(
		m.RoomsActive,
		m.RoomsCreated,
		m.TimersActive,
		m.Connections,
		m.Events,
		m.EventErrors,
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler exposes the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RoomOpened() {
	if m == nil {
		return
	}
	m.RoomsCreated.Inc()
	m.RoomsActive.Inc()
}

func (m *Metrics) RoomClosed() {
	if m == nil {
		return
	}
	m.RoomsActive.Dec()
}

func (m *Metrics) TimerStarted() {
	if m == nil {
		return
	}
	m.TimersActive.Inc()
}

func (m *Metrics) TimerStopped() {
	if m == nil {
		return
	}
	m.TimersActive.Dec()
}

func (m *Metrics) Connected() {
	if m == nil {
		return
	}
	m.Connections.Inc()
}

func (m *Metrics) Disconnected() {
	if m == nil {
		return
	}
	m.Connections.Dec()
}

func (m *Metrics) Event(name string) {
	if m == nil {
		return
	}
	m.Events.WithLabelValues(name).Inc()
}

func (m *Metrics) EventError(name, code string) {
	if m == nil {
		return
	}
	m.EventErrors.WithLabelValues(name, code).Inc()
}
