package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairchat_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pairchat_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	triggerInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairchat_trigger_invocations_total",
			Help: "Total number of reactive handler invocations by final outcome.",
		},
		[]string{"handler", "outcome"},
	)
	triggerRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairchat_trigger_retries_total",
			Help: "Total number of retried reactive handler attempts.",
		},
		[]string{"handler"},
	)
	triggerDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pairchat_trigger_duration_seconds",
			Help:    "Reactive handler latency including retries.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler"},
	)
	policyDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pairchat_policy_decisions_total",
			Help: "Total number of authorization decisions.",
		},
		[]string{"operation", "decision"},
	)
	fanoutFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pairchat_fanout_failures_total",
			Help: "Total number of failed partner updates during projection fan-out.",
		},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pairchat_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		triggerInvocationsTotal,
		triggerRetriesTotal,
		triggerDuration,
		policyDecisionsTotal,
		fanoutFailuresTotal,
		wsActiveConnections,
	)
}

func HTTPMetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}

			httpRequestsTotal.WithLabelValues(c.Request().Method, route, strconv.Itoa(c.Response().Status)).Inc()
			httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}

func ObserveTrigger(handler, outcome string, elapsed time.Duration) {
	triggerInvocationsTotal.WithLabelValues(handler, outcome).Inc()
	triggerDuration.WithLabelValues(handler).Observe(elapsed.Seconds())
}

func IncTriggerRetry(handler string) {
	triggerRetriesTotal.WithLabelValues(handler).Inc()
}

func IncPolicyDecision(operation string, allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	policyDecisionsTotal.WithLabelValues(operation, decision).Inc()
}

func IncFanoutFailure() {
	fanoutFailuresTotal.Inc()
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}
