package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	collectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adverts_collected_total",
			Help: "Total number of successful advert collections",
		},
	)

	sweptAdvertsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adverts_swept_total",
			Help: "Total number of adverts flipped to unavailable by the expiry sweep",
		},
	)
)

// Register installs the collectors on the default registry. Call once at
// startup.
func Register() {
	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestDuration)
	prometheus.MustRegister(collectionsTotal)
	prometheus.MustRegister(sweptAdvertsTotal)
}

// ObserveCollection records one successful collection.
func ObserveCollection() {
	collectionsTotal.Inc()
}

// ObserveSweep records how many adverts the last sweep expired.
func ObserveSweep(n int64) {
	sweptAdvertsTotal.Add(float64(n))
}

// Middleware returns an Echo middleware recording request counts and
// latencies. The route path (not the raw URL) is used to bound label
// cardinality.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			labels := []string{c.Request().Method, path, strconv.Itoa(status)}
			requestCounter.WithLabelValues(labels...).Inc()
			requestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// Handler exposes the default registry for the /metrics route.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
