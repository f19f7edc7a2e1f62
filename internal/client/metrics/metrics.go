// Package metrics instruments the request pipeline with Prometheus
// collectors held in a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/labportal/internal/client/client"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "labportal"

// StatusError labels requests that produced no response.
const StatusError = "error"

// Pending reports the number of requests in flight.
type Pending interface {
	Pending() int
}

// Metrics holds the client collectors.
type Metrics struct {
	reg *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New registers the request collectors and, when busy is non-nil, a gauge
// of outstanding requests read from it at scrape time.
func New(busy Pending) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "client_requests_total",
				Help:      "Total outgoing API requests",
			},
			[]string{"method", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "client_request_duration_seconds",
				Help:      "Outgoing API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}
	reg.MustRegister(m.RequestsTotal, m.RequestDuration)
	reg.MustRegister(collectors.NewGoCollector())

	if busy != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "client_requests_in_flight",
				Help:      "Outgoing API requests awaiting completion",
			},
			func() float64 { return float64(busy.Pending()) },
		))
	}
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Interceptor records one observation per request.
func (m *Metrics) Interceptor() client.Interceptor {
	return func(req *http.Request, next client.Handler) (*http.Response, error) {
		start := time.Now()
		resp, err := next(req)
		m.RequestDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())

		status := StatusError
		if err == nil && resp != nil {
			status = strconv.Itoa(resp.StatusCode)
		}
		m.RequestsTotal.WithLabelValues(req.Method, status).Inc()
		return resp, err
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
