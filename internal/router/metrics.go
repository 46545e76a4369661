package router

import (
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type httpMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	requests, err := meter.Int64Counter("http_requests_total",
		metric.WithDescription("HTTP requests by route, method and status"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &httpMetrics{requests: requests, duration: duration}, nil
}

func (r *Router) metricsMiddleware(next http.Handler) http.Handler {
	if r.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		route := r.routeTemplate(req)
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, req)

		attrs := metric.WithAttributes(
			attribute.String("route", route),
			attribute.String("method", req.Method),
			attribute.String("status", strconv.Itoa(rec.code())),
		)
		r.metrics.requests.Add(req.Context(), 1, attrs)
		r.metrics.duration.Record(req.Context(), time.Since(start).Seconds(), attrs)
	})
}
