package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command failures by command name. Incremented by
	// the cache package's client hook.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// FeedEventsPublished counts realtime feed events published to subscribers, by event type.
	FeedEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_feed_events_published_total",
		Help: "Total number of realtime feed events published, by event type",
	}, []string{"event_type"})

	// FeedSubscribers is the gauge of active feed WebSocket connections.
	FeedSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ripple_feed_subscribers",
		Help: "Number of active feed WebSocket connections",
	})

	// FeedBackpressureDrops counts feed events dropped because a subscriber's
	// send buffer was full or closed.
	FeedBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_feed_backpressure_drops_total",
		Help: "Total number of feed events dropped due to backpressure",
	}, []string{"reason"})
)

var (
	promOnce     sync.Once
	promInstance *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the Prometheus request middleware. The instance is
// shared process-wide; the collectors it creates can only be registered once.
// Callers expose it with RegisterAt(app, "/metrics").
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promInstance = fiberprometheus.New(serviceName)
	})
	return promInstance
}

// MetricsMiddleware returns the request-instrumentation handler for the given
// Prometheus middleware.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
