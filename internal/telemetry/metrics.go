package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/WailSalutem-Health-Care/clinic-datastore"

// Metrics holds all custom metrics for the service
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal metric.Int64Counter
	HTTPDurationMs    metric.Float64Histogram

	// Datastore metrics
	DatastoreOperationsTotal metric.Int64Counter
	DatastoreDurationMs      metric.Float64Histogram
	DatastoreAvailable       metric.Int64UpDownCounter
}

// InitMetrics initializes all custom metrics against the global meter provider
func InitMetrics() (*Metrics, error) {
	return NewMetrics(otel.Meter(meterName))
}

// NewMetrics creates the instruments on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	httpRequestsTotal, err := meter.Int64Counter(
		"http_server_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	httpDurationMs, err := meter.Float64Histogram(
		"http_server_duration_milliseconds",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	datastoreOperationsTotal, err := meter.Int64Counter(
		"datastore_operations_total",
		metric.WithDescription("Total number of datastore operations by outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	datastoreDurationMs, err := meter.Float64Histogram(
		"datastore_operation_duration_milliseconds",
		metric.WithDescription("Datastore round trip duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	datastoreAvailable, err := meter.Int64UpDownCounter(
		"datastore_available",
		metric.WithDescription("1 when the remote datastore was usable at startup"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		HTTPRequestsTotal:        httpRequestsTotal,
		HTTPDurationMs:           httpDurationMs,
		DatastoreOperationsTotal: datastoreOperationsTotal,
		DatastoreDurationMs:      datastoreDurationMs,
		DatastoreAvailable:       datastoreAvailable,
	}, nil
}

// RecordHTTPRequest records an HTTP request metric
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, statusCode int, durationMs float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http_method", method),
		attribute.String("http_route", route),
		attribute.Int("http_status_code", statusCode),
	}

	m.HTTPRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.HTTPDurationMs.Record(ctx, durationMs, metric.WithAttributes(attrs...))
}

// RecordDatastoreOperation records one datastore operation. Calls skipped by
// the availability gate have no duration and only count.
func (m *Metrics) RecordDatastoreOperation(ctx context.Context, entity, operation, status string, durationMs float64) {
	attrs := metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)

	m.DatastoreOperationsTotal.Add(ctx, 1, attrs)
	if status != "unavailable" {
		m.DatastoreDurationMs.Record(ctx, durationMs, attrs)
	}
}

// RecordAvailability records the bootstrap outcome once
func (m *Metrics) RecordAvailability(ctx context.Context, available bool, reason string) {
	var v int64
	if available {
		v = 1
	}
	m.DatastoreAvailable.Add(ctx, v, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}
