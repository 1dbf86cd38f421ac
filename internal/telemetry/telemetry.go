package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const (
	serviceName    = "recew"
	serviceVersion = "1.0.0"
)

// TelemetryConfig holds the configuration for telemetry
type TelemetryConfig struct {
	Enabled  bool
	Endpoint string // OTLP/HTTP host:port; empty uses the exporter's default or OTEL_EXPORTER_OTLP_ENDPOINT
	Insecure bool
}

// Provider owns the tracer provider for the process
type Provider struct {
	tp     *sdktrace.TracerProvider // nil when disabled
	tracer trace.Tracer
	logger *zap.Logger
}

// NewProvider creates a new telemetry provider. When telemetry is disabled the provider hands out
// no-op tracers and nothing is exported.
func NewProvider(ctx context.Context, config TelemetryConfig, logger *zap.Logger) (*Provider, error) {
	if !config.Enabled {
		logger.Debug("Telemetry disabled")
		return &Provider{
			tracer: noop.NewTracerProvider().Tracer(serviceName),
			logger: logger,
		}, nil
	}

	opts := []otlptracehttp.Option{}
	if config.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(config.Endpoint))
	}
	if config.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", serviceVersion),
	)
	return newProvider(sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), logger), nil
}

func newProvider(tp *sdktrace.TracerProvider, logger *zap.Logger) *Provider {
	otel.SetTracerProvider(tp)
	logger.Info("Telemetry enabled")
	return &Provider{
		tp:     tp,
		tracer: tp.Tracer(serviceName),
		logger: logger,
	}
}

// Tracer returns the tracer conversations should record their turns with
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Shutdown flushes pending spans and shuts down the telemetry provider
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	p.logger.Info("Shutting down telemetry provider")
	if err := p.tp.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down tracer provider: %w", err)
	}
	return nil
}
