// internal/common/observability/observability.go
package observability

import (
	"context"
	"errors"
	"log"
	"time"

	"mic-ai-service/internal/common/config"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/jaeger"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	StageCallsMetric    = "otel_analysis_stage_calls"
	StageDurationMetric = "otel_analysis_stage_duration"
)

// Observability bundles the OpenTelemetry meter and tracer for one service.
// A nil *Observability is valid and records nothing.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	stageCounter   otelmetric.Int64Counter
	stageDuration  otelmetric.Float64Histogram
}

// New wires the prometheus exporter into the default registry and, when
// cfg.JaegerEndpoint is set, ships spans to Jaeger.
func New(cfg config.ObservabilityConfig) *Observability {
	return NewWithRegisterer(cfg, promclient.DefaultRegisterer)
}

// NewWithRegisterer is New with an explicit prometheus registerer.
func NewWithRegisterer(cfg config.ObservabilityConfig, reg promclient.Registerer) *Observability {
	o := &Observability{}

	if cfg.MetricsEnabled {
		exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
		if err != nil {
			log.Printf("Failed to create Prometheus exporter: %v", err)
		} else {
			o.meterProvider = metric.NewMeterProvider(metric.WithReader(exporter))
			otel.SetMeterProvider(o.meterProvider)
			o.initInstruments(o.meterProvider.Meter(cfg.ServiceName))
		}
	}

	tpOpts := []sdktrace.TracerProviderOption{}
	if cfg.JaegerEndpoint != "" {
		exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.JaegerEndpoint)))
		if err != nil {
			log.Printf("Failed to create Jaeger exporter: %v", err)
		} else {
			tpOpts = append(tpOpts, sdktrace.WithBatcher(exp))
		}
	}
	o.tracerProvider = sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(o.tracerProvider)
	o.tracer = o.tracerProvider.Tracer(cfg.ServiceName)

	return o
}

// Instrument names carry the otel_ prefix so they never collide with the
// promauto families in internal/common/metrics on a shared registry.
func (o *Observability) initInstruments(meter otelmetric.Meter) {
	o.stageCounter, _ = meter.Int64Counter(
		StageCallsMetric,
		otelmetric.WithDescription("Number of analysis stages executed"),
	)
	o.stageDuration, _ = meter.Float64Histogram(
		StageDurationMetric,
		otelmetric.WithDescription("Analysis stage duration"),
		otelmetric.WithUnit("ms"),
	)
}

// StartSpan starts a span named name. End must be called on the returned span.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := trace.Tracer(noop.NewTracerProvider().Tracer(""))
	if o != nil && o.tracer != nil {
		tracer = o.tracer
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records err on span (if any) and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (o *Observability) RecordStage(ctx context.Context, stage, outcome string, duration time.Duration) {
	if o == nil || o.stageCounter == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("outcome", outcome),
	)
	o.stageCounter.Add(ctx, 1, attrs)
	o.stageDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// Shutdown flushes and stops the providers.
func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var errs []error
	if o.meterProvider != nil {
		errs = append(errs, o.meterProvider.Shutdown(ctx))
	}
	if o.tracerProvider != nil {
		errs = append(errs, o.tracerProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
