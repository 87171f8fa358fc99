// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several servers (and tests) can coexist
type Metrics struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	votes         prometheus.Counter
	registrations prometheus.Counter
	windowOpen    *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cipa",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route pattern and status code",
	}, []string{"route", "code"})
	m.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cipa",
		Name:      "http_request_duration_seconds",
		Help:      "Time spent serving HTTP requests",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
	m.votes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cipa",
		Name:      "votes_total",
		Help:      "Votes cast since start",
	})
	m.registrations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "cipa",
		Name:      "registrations_total",
		Help:      "Candidate registrations since start",
	})
	m.windowOpen = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "cipa",
		Name:      "schedule_window_open",
		Help:      "1 when the schedule window of the activity is open",
	}, []string{"activity"})

	m.registry.MustRegister(
		m.requests, m.duration, m.votes, m.registrations, m.windowOpen,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest records one served request. route is the mux pattern.
func (m *Metrics) ObserveRequest(route string, code int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) VoteCast()            { m.votes.Inc() }
func (m *Metrics) RegistrationCreated() { m.registrations.Inc() }

// SetWindowOpen sets the gauge for an activity keyword
func (m *Metrics) SetWindowOpen(activity string, open bool) {
	v := 0.0
	if open {
		v = 1
	}
	m.windowOpen.WithLabelValues(activity).Set(v)
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
