package observability

import (
	"context"
	"fmt"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability owns the OpenTelemetry meter provider. Instruments are
// exported through the Prometheus registry given at construction. A nil
// *Observability records nothing.
type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	jobCounter    otelmetric.Int64Counter
	jobDuration   otelmetric.Float64Histogram
	mergeCounter  otelmetric.Int64Counter
}

// New exports into the default Prometheus registry and installs the provider
// globally.
func New(serviceName string) (*Observability, error) {
	o, err := NewWithRegisterer(serviceName, promclient.DefaultRegisterer)
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(o.meterProvider)
	return o, nil
}

func NewWithRegisterer(serviceName string, reg promclient.Registerer) (*Observability, error) {
	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	meter := provider.Meter(serviceName)

	jobCounter, err := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)
	if err != nil {
		return nil, err
	}

	jobDuration, err := meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	mergeCounter, err := meter.Int64Counter(
		"providers.merged",
		otelmetric.WithDescription("Provider records absorbed into a survivor"),
	)
	if err != nil {
		return nil, err
	}

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		jobCounter:    jobCounter,
		jobDuration:   jobDuration,
		mergeCounter:  mergeCounter,
	}, nil
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o == nil {
		return
	}
	o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration) {
	if o == nil {
		return
	}
	o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
	))
}

func (o *Observability) RecordMerged(ctx context.Context, trigger string, removed int) {
	if o == nil || removed == 0 {
		return
	}
	o.mergeCounter.Add(ctx, int64(removed), otelmetric.WithAttributes(
		attribute.String("trigger", trigger),
	))
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
