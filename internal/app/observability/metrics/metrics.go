package metrics

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal       metric.Int64Counter
	HTTPRequestDuration     metric.Float64Histogram
	AuthRequestsTotal       metric.Int64Counter
	InsightsGeneratedTotal  metric.Int64Counter
	WeatherFetchDuration    metric.Float64Histogram
	PaymentsProcessedTotal  metric.Int64Counter
	ExpiredTrialsSweptTotal metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metric instruments once, using the
// globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("farmflow-backend")
		var err error
		m := &AppMetrics{}

		m.HTTPRequestsTotal, err = meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_requests_total: %v", err)
		}

		m.HTTPRequestDuration, err = meter.Float64Histogram(
			"http_request_duration_seconds",
			metric.WithDescription("Duration of HTTP requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create http_request_duration_seconds: %v", err)
		}

		m.AuthRequestsTotal, err = meter.Int64Counter(
			"auth_requests_total",
			metric.WithDescription("Total number of authentication requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create auth_requests_total: %v", err)
		}

		m.InsightsGeneratedTotal, err = meter.Int64Counter(
			"insights_generated_total",
			metric.WithDescription("Total number of farm and weather insights generated"),
			metric.WithUnit("{insight}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create insights_generated_total: %v", err)
		}

		m.WeatherFetchDuration, err = meter.Float64Histogram(
			"weather_fetch_duration_seconds",
			metric.WithDescription("Duration of upstream weather API calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create weather_fetch_duration_seconds: %v", err)
		}

		m.PaymentsProcessedTotal, err = meter.Int64Counter(
			"payments_processed_total",
			metric.WithDescription("Total number of payments processed"),
			metric.WithUnit("{payment}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create payments_processed_total: %v", err)
		}

		m.ExpiredTrialsSweptTotal, err = meter.Int64Counter(
			"expired_trials_swept_total",
			metric.WithDescription("Total number of expired trials processed by the sweeper"),
			metric.WithUnit("{subscription}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create expired_trials_swept_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance, or nil when
// InitAppMetrics has not run. The recorder methods tolerate a nil receiver so
// callers do not have to guard every call site.
func Get() *AppMetrics {
	return appMetrics
}

// RecordHTTPRequest counts a finished request and observes its latency.
func (m *AppMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordAuthRequest counts a signup/signin attempt and its outcome.
func (m *AppMetrics) RecordAuthRequest(ctx context.Context, operation string, success bool) {
	if m == nil {
		return
	}
	m.AuthRequestsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Bool("success", success),
	))
}

// RecordInsights counts generated insights by kind (farm or weather).
func (m *AppMetrics) RecordInsights(ctx context.Context, kind string, count int) {
	if m == nil {
		return
	}
	m.InsightsGeneratedTotal.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("kind", kind),
	))
}

// RecordWeatherFetch observes the latency of one upstream weather call.
func (m *AppMetrics) RecordWeatherFetch(ctx context.Context, endpoint string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.WeatherFetchDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.Bool("error", err != nil),
	))
}

// RecordPayment counts a payment reaching a terminal status.
func (m *AppMetrics) RecordPayment(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.PaymentsProcessedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

// RecordTrialSweep counts subscriptions handled by one sweeper pass.
func (m *AppMetrics) RecordTrialSweep(ctx context.Context, count int) {
	if m == nil {
		return
	}
	m.ExpiredTrialsSweptTotal.Add(ctx, int64(count))
}
