package tracing

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc/credentials"
)

const (
	defaultServiceName = "pitchflow"
	defaultCollector   = "localhost:4317"
)

type Config struct {
	Enabled     bool
	ServiceName string

	OTLPEndpoint string
	OTLPInsecure bool

	SampleRatio float64
}

// collector is where spans are shipped, after env fallbacks are applied.
type collector struct {
	endpoint string
	insecure bool
}

func (cfg Config) collector() collector {
	endpoint := firstSet(cfg.OTLPEndpoint, os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"), defaultCollector)
	insecure := cfg.OTLPInsecure
	if v := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE")); v != "" {
		insecure = parseBool(v)
	}
	return collector{endpoint: hostPort(endpoint), insecure: insecure}
}

func (cfg Config) serviceName() string {
	return firstSet(cfg.ServiceName, os.Getenv("OTEL_SERVICE_NAME"), defaultServiceName)
}

// sampler keeps the caller's decision and samples new root traces (page
// loads, submissions) at the configured ratio.
func (cfg Config) sampler() sdktrace.Sampler {
	ratio := cfg.SampleRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// Setup installs the global tracer provider and the W3C propagator used for
// incoming requests and the deck webhook. When tracing is off, or the exporter
// cannot be built, pitchflow keeps serving with the no-op provider.
func Setup(ctx context.Context, cfg Config, logger *slog.Logger) (func(context.Context) error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	otel.SetTextMapPropagator(propagation.TraceContext{})
	if !cfg.Enabled {
		return noShutdown, nil
	}

	target := cfg.collector()
	exp, err := otlptracegrpc.New(ctx, target.options()...)
	if err != nil {
		logger.Warn("otel exporter init failed; tracing disabled", "endpoint", target.endpoint, "err", err)
		return noShutdown, nil
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(serviceResource(cfg.serviceName(), logger)),
		sdktrace.WithSampler(cfg.sampler()),
	)
	otel.SetTracerProvider(tp)
	logger.Info("tracing enabled", "endpoint", target.endpoint, "service", cfg.serviceName())
	return tp.Shutdown, nil
}

func (c collector) options() []otlptracegrpc.Option {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(c.endpoint)}
	if c.insecure {
		return append(opts, otlptracegrpc.WithInsecure())
	}
	return append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewClientTLSFromCert(nil, "")))
}

func serviceResource(name string, logger *slog.Logger) *resource.Resource {
	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(name),
	))
	if err != nil {
		logger.Warn("otel resource merge failed; using default", "err", err)
		return resource.Default()
	}
	return res
}

func noShutdown(context.Context) error { return nil }

// hostPort turns a URL-style collector address into the host:port the gRPC
// exporter dials.
func hostPort(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		if u, err := url.Parse(raw); err == nil && u.Host != "" {
			return u.Host
		}
	}
	return strings.TrimSuffix(raw, "/")
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func parseBool(v string) bool {
	switch strings.TrimSpace(strings.ToLower(v)) {
	case "true", "1", "yes", "y", "on":
		return true
	}
	return false
}
