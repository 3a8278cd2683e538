package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Metrics holds the Prometheus collectors of the API. A nil *Metrics
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ReactionsTotal   *prometheus.CounterVec
	UploadsTotal     *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
}

// NewMetrics creates the collectors on a fresh registry, together with the
// Go runtime and process collectors. pool may be nil.
func NewMetrics(pool *pgxpool.Pool) *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.ReactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lokdarpan_reactions_total",
			Help: "Total like/dislike toggles, by resulting action.",
		},
		[]string{"action"},
	)

	m.UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lokdarpan_uploads_total",
			Help: "Video uploads, by mode (multipart, direct) and outcome.",
		},
		[]string{"mode", "outcome"},
	)

	m.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lokdarpan_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	m.RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "lokdarpan_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	m.CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lokdarpan_cache_hits_total",
			Help: "Total Redis cache hits.",
		},
	)

	m.CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lokdarpan_cache_misses_total",
			Help: "Total Redis cache misses.",
		},
	)

	m.registry.MustRegister(
		m.ReactionsTotal,
		m.UploadsTotal,
		m.RequestDuration,
		m.RequestsInFlight,
		m.CacheHits,
		m.CacheMisses,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// DB pool gauges read live stats from pgxpool
	if pool != nil {
		m.registry.MustRegister(
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "lokdarpan_db_connection_pool_active",
					Help: "Number of active database connections.",
				},
				func() float64 { return float64(pool.Stat().AcquiredConns()) },
			),
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "lokdarpan_db_connection_pool_idle",
					Help: "Number of idle database connections.",
				},
				func() float64 { return float64(pool.Stat().IdleConns()) },
			),
		)
	}

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveReaction counts a completed toggle.
func (m *Metrics) ObserveReaction(action string) {
	if m == nil {
		return
	}
	m.ReactionsTotal.WithLabelValues(action).Inc()
}

// ObserveUpload counts an upload attempt.
func (m *Metrics) ObserveUpload(mode string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.UploadsTotal.WithLabelValues(mode, outcome).Inc()
}

// ObserveCache counts a cache lookup. It is registered as the cache
// observer.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
}

// Middleware records request duration and in-flight count.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Don't instrument the /metrics endpoint itself
		if m == nil || c.Path() == "/metrics" {
			return c.Next()
		}

		// Copy the method into an owned string BEFORE c.Next(): Fiber
		// returns slices backed by the fasthttp buffer which can be reused.
		method := string([]byte(c.Method()))

		m.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := c.Response().StatusCode()
		if err != nil {
			status = errorStatus(err)
		}

		m.RequestDuration.WithLabelValues(endpointLabel(c), method, strconv.Itoa(status)).Observe(duration)
		m.RequestsInFlight.Dec()

		return err
	}
}

// endpointLabel uses the matched route pattern so ids never become label
// values.
func endpointLabel(c fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
		return r.Path
	}
	return "unmatched"
}

// Handler serves the Prometheus /metrics endpoint via Fiber.
func (m *Metrics) Handler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry}),
	)
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}
