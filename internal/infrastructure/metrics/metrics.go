// Package metrics expone contadores e histogramas Prometheus sobre un registro propio
// (no el global), para que tests y múltiples instancias no choquen al registrar.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/storefront-api/internal/application/ports"
)

var _ ports.Recorder = (*Metrics)(nil)

// Metrics agrupa los collectors de la API. Un *Metrics nil es válido y no registra nada.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	ordersPlaced  *prometheus.CounterVec
	webhookEvents *prometheus.CounterVec
	syncRuns      *prometheus.CounterVec
	syncDuration  prometheus.Histogram
	syncRecords   *prometheus.CounterVec
}

// New crea el registro y registra todos los collectors bajo namespace.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "storefront"
	}
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "Requests HTTP por método, ruta y status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help: "Latencia de requests HTTP.", Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "orders", Name: "placed_total",
			Help: "Órdenes creadas por resultado (ok, payment_failed, rejected).",
		}, []string{"outcome"}),
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "payments", Name: "webhook_events_total",
			Help: "Eventos de la pasarela por tipo y resultado.",
		}, []string{"kind", "outcome"}),
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "catalog_sync", Name: "runs_total",
			Help: "Corridas de sincronización por resultado.",
		}, []string{"outcome"}),
		syncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "catalog_sync", Name: "duration_seconds",
			Help: "Duración de cada corrida de sincronización.", Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		}),
		syncRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "catalog_sync", Name: "records_total",
			Help: "Productos procesados por la sincronización.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.ordersPlaced, m.webhookEvents,
		m.syncRuns, m.syncDuration, m.syncRecords,
	)
	return m
}

// Registry devuelve el registro (tests y handler).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler expone /metrics en formato texto de Prometheus.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTP registra un request. route debe ser el template (/api/orders/:id), no el path real.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) OrderPlaced(outcome string) {
	if m == nil {
		return
	}
	m.ordersPlaced.WithLabelValues(outcome).Inc()
}

func (m *Metrics) WebhookEvent(kind, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) SyncRun(outcome string, elapsed time.Duration, created, updated, failed int) {
	if m == nil {
		return
	}
	m.syncRuns.WithLabelValues(outcome).Inc()
	m.syncDuration.Observe(elapsed.Seconds())
	m.syncRecords.WithLabelValues("created").Add(float64(created))
	m.syncRecords.WithLabelValues("updated").Add(float64(updated))
	m.syncRecords.WithLabelValues("failed").Add(float64(failed))
}
