// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campusconnect_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "campusconnect_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "campusconnect_ws_active_connections",
			Help: "Number of open view connections.",
		},
	)
	wsFramesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campusconnect_ws_frames_total",
			Help: "Frames exchanged over view connections.",
		},
		[]string{"direction", "type"},
	)
	liveSubscriptions = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "campusconnect_live_subscriptions",
			Help: "Open live query subscriptions.",
		},
		[]string{"query"},
	)
	liveSnapshotsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campusconnect_live_snapshots_total",
			Help: "Snapshots delivered to live subscriptions.",
		},
		[]string{"query"},
	)
	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campusconnect_commands_total",
			Help: "Mutation commands by outcome.",
		},
		[]string{"command", "outcome"},
	)
	eventPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "campusconnect_event_publish_errors_total",
			Help: "Total number of domain event publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		wsActiveConnections,
		wsFramesTotal,
		liveSubscriptions,
		liveSnapshotsTotal,
		commandsTotal,
		eventPublishErrorsTotal,
	)
}

// HTTPMetricsMiddleware records request counts and latencies per route.
func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncWSActive() { wsActiveConnections.Inc() }

func DecWSActive() { wsActiveConnections.Dec() }

// IncWSFrame counts a frame; direction is "in" or "out".
func IncWSFrame(direction, frameType string) {
	wsFramesTotal.WithLabelValues(direction, frameType).Inc()
}

func IncSubscription(query string) { liveSubscriptions.WithLabelValues(query).Inc() }

func DecSubscription(query string) { liveSubscriptions.WithLabelValues(query).Dec() }

func IncSnapshot(query string) { liveSnapshotsTotal.WithLabelValues(query).Inc() }

// ObserveCommand counts a command by whether it returned an error.
func ObserveCommand(command string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	commandsTotal.WithLabelValues(command, outcome).Inc()
}

func IncEventPublishError() { eventPublishErrorsTotal.Inc() }
