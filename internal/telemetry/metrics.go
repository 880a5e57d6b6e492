package telemetry

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the HTTP and business collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	StockUpdates      prometheus.Counter
	CatalogFailures   *prometheus.CounterVec
	ListOmitted       prometheus.Counter
	EventPublishFails prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stockroom_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stockroom_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		StockUpdates: f.NewCounter(prometheus.CounterOpts{
			Name: "stockroom_stock_updates_total",
			Help: "Successful stock updates",
		}),
		CatalogFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "stockroom_catalog_lookup_failures_total",
			Help: "Catalog lookups that ended unavailable, by operation",
		}, []string{"op"}),
		ListOmitted: f.NewCounter(prometheus.CounterOpts{
			Name: "stockroom_inventory_list_omitted_total",
			Help: "Stock records left out of listings because the product did not resolve",
		}),
		EventPublishFails: f.NewCounter(prometheus.CounterOpts{
			Name: "stockroom_event_publish_failures_total",
			Help: "StockUpdated events that could not be published",
		}),
	}
}

// Middleware records request count and latency keyed by the matched route.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		m.RequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
