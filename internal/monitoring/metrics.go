package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec

	// Business metrics
	SalesRecorded          *prometheus.CounterVec
	CommissionRevenue      *prometheus.CounterVec
	PayoutRequestsTotal    *prometheus.CounterVec
	PayoutAmountTotal      prometheus.Counter
	LoyaltyPointsAwarded   prometheus.Counter
	StalePayoutsDetected   prometheus.Counter
	CommissionRateFallback prometheus.Counter
}

var metrics *Metrics

// Init initializes all Prometheus metrics
func Init() *Metrics {
	if metrics != nil {
		return metrics
	}

	metrics = &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
		),

		// Cache metrics
		CacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache_type"},
		),
		CacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache_type"},
		),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "db_query_duration_seconds",
				Help:    "Database query duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"query_type"},
		),

		// Business metrics
		SalesRecorded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sales_recorded_total",
				Help: "Total number of sales recorded",
			},
			[]string{"listing_type"},
		),
		CommissionRevenue: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "commission_revenue_total",
				Help: "Total commission revenue collected",
			},
			[]string{"listing_type"},
		),
		PayoutRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payout_requests_total",
				Help: "Total number of payout request transitions",
			},
			[]string{"status"},
		),
		PayoutAmountTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "payout_amount_total",
				Help: "Total amount requested for payout",
			},
		),
		LoyaltyPointsAwarded: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "loyalty_points_awarded_total",
				Help: "Total loyalty points awarded to sellers",
			},
		),
		StalePayoutsDetected: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "stale_payouts_detected_total",
				Help: "Payout requests found stuck in processing",
			},
		),
		CommissionRateFallback: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "commission_rate_fallback_total",
				Help: "Commission rate lookups that fell back to the default rate",
			},
		),
	}

	return metrics
}

// Get returns the global metrics instance
func Get() *Metrics {
	if metrics == nil {
		return Init()
	}
	return metrics
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// MetricsMiddleware is a Gin middleware for collecting HTTP metrics
func MetricsMiddleware() gin.HandlerFunc {
	m := Get()
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method

		// Track in-flight requests
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		// Process request
		c.Next()

		// Record metrics
		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// RecordCacheHit records a cache hit
func RecordCacheHit(cacheType string) {
	Get().CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(cacheType string) {
	Get().CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordDBQuery records a database query duration
func RecordDBQuery(queryType string, duration time.Duration) {
	Get().DBQueryDuration.WithLabelValues(queryType).Observe(duration.Seconds())
}

// RecordSale records a recorded sale and its commission revenue
func RecordSale(listingType string, commission float64) {
	Get().SalesRecorded.WithLabelValues(listingType).Inc()
	Get().CommissionRevenue.WithLabelValues(listingType).Add(commission)
}

// RecordPayoutTransition records a payout request status transition
func RecordPayoutTransition(status string) {
	Get().PayoutRequestsTotal.WithLabelValues(status).Inc()
}

// RecordPayoutAmount records the amount of a created payout request
func RecordPayoutAmount(amount float64) {
	Get().PayoutAmountTotal.Add(amount)
}

// RecordLoyaltyPoints records awarded loyalty points
func RecordLoyaltyPoints(points int64) {
	Get().LoyaltyPointsAwarded.Add(float64(points))
}

// RecordStalePayout records a payout request found stuck in processing
func RecordStalePayout() {
	Get().StalePayoutsDetected.Inc()
}

// RecordCommissionFallback records a rate lookup that used the default rate
func RecordCommissionFallback() {
	Get().CommissionRateFallback.Inc()
}
