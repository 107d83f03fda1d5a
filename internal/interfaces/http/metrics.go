package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const localMetrics = "metrics"

// Metrics colectores de la API registrados en un registry propio.
type Metrics struct {
	registry          *prometheus.Registry
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	authzDecisions    *prometheus.CounterVec
	listingRejections *prometheus.CounterVec
}

// NewMetrics crea y registra los colectores. Con reg nil usa un registry nuevo.
func NewMetrics(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: reg,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		authzDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authz_decisions_total",
			Help: "Decisiones del guard de roles por resultado y motivo",
		}, []string{"result", "reason"}),
		listingRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "listing_rejections_total",
			Help: "Listados de usuarios rechazados al reconciliar filtros",
		}, []string{"reason"}),
	}
	for _, c := range []prometheus.Collector{m.requestsTotal, m.requestDuration, m.authzDecisions, m.listingRejections} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// WatchPool expone el estado del pool de conexiones.
func (m *Metrics) WatchPool(pool *pgxpool.Pool) error {
	gauges := map[string]func(*pgxpool.Stat) float64{
		"db_pool_total_conns":    func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) },
		"db_pool_acquired_conns": func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) },
		"db_pool_idle_conns":     func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) },
	}
	for name, read := range gauges {
		read := read
		g := prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: "Estado del pool de PostgreSQL"},
			func() float64 { return read(pool.Stat()) })
		if err := m.registry.Register(g); err != nil {
			return err
		}
	}
	return nil
}

// Middleware mide cada request y deja las métricas disponibles para el guard y los handlers.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(localMetrics, m)
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
		path := c.Route().Path
		m.requestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler expone /metrics.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}

func metricsFrom(c *fiber.Ctx) *Metrics {
	m, _ := c.Locals(localMetrics).(*Metrics)
	return m
}

func (m *Metrics) decision(allowed bool, reason string) {
	if m == nil {
		return
	}
	result := "allow"
	if !allowed {
		result = "deny"
	}
	m.authzDecisions.WithLabelValues(result, reason).Inc()
}

func (m *Metrics) listingRejected(reason string) {
	if m == nil {
		return
	}
	m.listingRejections.WithLabelValues(reason).Inc()
}
