// Package telemetry wires OpenTelemetry traces and logs for applications that host
// widget machines. Machines start a span per Send; with logs enabled, records written
// through logger.WithOTel reach the same collector.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/amp-labs/amp-a11y/envutil"
	"github.com/amp-labs/amp-a11y/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

const (
	defaultServiceVersion = "1.0.0"
	defaultTimeout        = 5 * time.Second
)

// flushers holds the Shutdown funcs of the providers Initialize installed, in
// installation order.
var (
	flushMu  sync.Mutex                        //nolint:gochecknoglobals
	flushers []func(ctx context.Context) error //nolint:gochecknoglobals
)

// Config holds the OpenTelemetry configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint receives traces. Logs go to LogsEndpoint when set, else here.
	Endpoint     string
	LogsEndpoint string
	Enabled      bool
	LogsEnabled  bool
	Timeout      time.Duration
}

func (c *Config) logsEndpoint() string {
	if c.LogsEndpoint != "" {
		return c.LogsEndpoint
	}

	return c.Endpoint
}

// LoadConfigFromEnv reads the OTEL_* variables. The service name defaults to the
// logging subsystem of ctx.
func LoadConfigFromEnv(ctx context.Context, runningEnv string) (*Config, error) {
	cfg := &Config{
		ServiceName:    envutil.String("OTEL_SERVICE_NAME").ValueOrElse(logger.GetSubsystem(ctx)),
		ServiceVersion: envutil.String("OTEL_SERVICE_VERSION").ValueOrElse(defaultServiceVersion),
		Environment:    runningEnv,
		Endpoint:       envutil.String("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT").ValueOrElse(""),
		LogsEndpoint:   envutil.String("OTEL_EXPORTER_OTLP_LOGS_ENDPOINT").ValueOrElse(""),
	}

	var err error

	if cfg.Enabled, err = envutil.Bool("OTEL_ENABLED", envutil.Default(false)).Value(); err != nil {
		return nil, err
	}

	if cfg.LogsEnabled, err = LogsEnabledFromEnv(); err != nil {
		return nil, err
	}

	timeout := envutil.Duration("OTEL_EXPORTER_OTLP_TIMEOUT", envutil.Default(defaultTimeout))
	if cfg.Timeout, err = timeout.Value(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LogsEnabledFromEnv reads OTEL_LOGS_ENABLED. Callers that build the logger before
// loading the rest of Config use it so both agree on the flag.
func LogsEnabledFromEnv() (bool, error) {
	return envutil.Bool("OTEL_LOGS_ENABLED", envutil.Default(false)).Value()
}

// Initialize installs the global tracer provider, and the global logger provider when
// LogsEnabled is set. It does nothing when telemetry is disabled or has nowhere to
// send data.
func Initialize(ctx context.Context, config *Config) error {
	switch {
	case !config.Enabled:
		slog.InfoContext(ctx, "OpenTelemetry is disabled")

		return nil
	case config.Endpoint == "":
		slog.WarnContext(ctx, "OpenTelemetry endpoint not configured, tracing will be disabled")

		return nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceNameKey.String(config.ServiceName),
		semconv.ServiceVersionKey.String(config.ServiceVersion),
		semconv.DeploymentEnvironmentKey.String(config.Environment),
	))
	if err != nil {
		return fmt.Errorf("building otel resource: %w", err)
	}

	traces, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(config.Endpoint),
		otlptracehttp.WithTimeout(config.Timeout))
	if err != nil {
		return fmt.Errorf("creating trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traces),
		sdktrace.WithResource(res),
	)
	installed := []func(context.Context) error{tp.Shutdown}

	if config.LogsEnabled {
		logs, err := otlploghttp.New(ctx,
			otlploghttp.WithEndpointURL(config.logsEndpoint()),
			otlploghttp.WithTimeout(config.Timeout))
		if err != nil {
			return errors.Join(fmt.Errorf("creating log exporter: %w", err), tp.Shutdown(ctx))
		}

		lp := sdklog.NewLoggerProvider(
			sdklog.WithProcessor(sdklog.NewBatchProcessor(logs)),
			sdklog.WithResource(res),
		)

		global.SetLoggerProvider(lp)

		installed = append(installed, lp.Shutdown)
	}

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	flushMu.Lock()
	flushers = append(flushers, installed...)
	flushMu.Unlock()

	slog.InfoContext(ctx, "OpenTelemetry initialized",
		"service", config.ServiceName,
		"version", config.ServiceVersion,
		"environment", config.Environment,
		"endpoint", config.Endpoint,
		"logs", config.LogsEnabled)

	return nil
}

// Shutdown flushes and stops the providers Initialize installed, latest first. A
// second call does nothing.
func Shutdown(ctx context.Context) error {
	flushMu.Lock()
	pending := flushers
	flushers = nil
	flushMu.Unlock()

	var errs []error

	for _, flush := range slices.Backward(pending) {
		errs = append(errs, flush(ctx))
	}

	return errors.Join(errs...)
}
