// Package metrics exposes Prometheus collectors for HTTP traffic, order
// ingestion and shipment batch operations.
package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	resultSuccess = "success"
	resultError   = "error"
)

// Registry owns a private Prometheus registry and the service collectors
type Registry struct {
	reg *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpInFlight prometheus.Gauge

	ingestRuns     *prometheus.CounterVec
	ingestOrders   *prometheus.CounterVec
	ingestDuration *prometheus.HistogramVec

	shipmentOps      *prometheus.CounterVec
	shipmentRows     *prometheus.CounterVec
	shipmentDuration *prometheus.HistogramVec
}

// NewRegistry creates the collectors under namespace and registers them
// together with the Go runtime and process collectors
func NewRegistry(namespace string) *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
		ingestRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_runs_total",
			Help:      "Order uploads by marketplace and result.",
		}, []string{"marketplace", "result"}),
		ingestOrders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_orders_total",
			Help:      "Order rows by marketplace and outcome (accepted or duplicate).",
		}, []string{"marketplace", "outcome"}),
		ingestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_duration_seconds",
			Help:      "Time to detect, normalize and store one upload.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"marketplace"}),
		shipmentOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shipment_operations_total",
			Help:      "Shipment batch operations by operation and result.",
		}, []string{"op", "result"}),
		shipmentRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shipment_rows_affected_total",
			Help:      "Orders or shipments changed by batch operations.",
		}, []string{"op"}),
		shipmentDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "shipment_operation_duration_seconds",
			Help:      "Shipment batch operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.httpRequests, r.httpDuration, r.httpInFlight,
		r.ingestRuns, r.ingestOrders, r.ingestDuration,
		r.shipmentOps, r.shipmentRows, r.shipmentDuration,
	)
	return r
}

// RegisterDB exports connection pool statistics of db
func (r *Registry) RegisterDB(db *sql.DB, name string) error {
	return r.reg.Register(collectors.NewDBStatsCollector(db, name))
}

// Gatherer exposes the underlying registry, mostly for tests
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves the registry in the Prometheus text format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// RequestStarted increments the in-flight gauge; call the returned func when done
func (r *Registry) RequestStarted() func() {
	r.httpInFlight.Inc()
	return r.httpInFlight.Dec
}

// ObserveHTTP records one finished request. route is the matched pattern,
// never the raw path.
func (r *Registry) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveIngest records one ingestion attempt
func (r *Registry) ObserveIngest(marketplace string, accepted, duplicates int, elapsed time.Duration, err error) {
	r.ingestRuns.WithLabelValues(marketplace, result(err)).Inc()
	r.ingestDuration.WithLabelValues(marketplace).Observe(elapsed.Seconds())
	if err != nil {
		return
	}
	r.ingestOrders.WithLabelValues(marketplace, "accepted").Add(float64(accepted))
	r.ingestOrders.WithLabelValues(marketplace, "duplicate").Add(float64(duplicates))
}

// ObserveShipmentOp records one batch manager operation
func (r *Registry) ObserveShipmentOp(op string, affected int, elapsed time.Duration, err error) {
	r.shipmentOps.WithLabelValues(op, result(err)).Inc()
	r.shipmentDuration.WithLabelValues(op).Observe(elapsed.Seconds())
	if err == nil && affected > 0 {
		r.shipmentRows.WithLabelValues(op).Add(float64(affected))
	}
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}
