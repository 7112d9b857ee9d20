package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/subprocess/logger"
)

// Spawn outcomes recorded on the spawn.total counter.
const (
	OutcomeOK           = "ok"
	OutcomeInvalid      = "invalid"
	OutcomeLaunchFailed = "launch_failed"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string `yaml:"service_name" mapstructure:"service_name"`
	ServiceVersion string `yaml:"service_version" mapstructure:"service_version"`
	Environment    string `yaml:"environment" mapstructure:"environment"`
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure bool   `yaml:"insecure" mapstructure:"insecure"`
	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// SpawnMetrics holds the instruments recorded around process launches.
type SpawnMetrics struct {
	spawnTotal    metric.Int64Counter
	spawnDuration metric.Float64Histogram
	live          metric.Int64UpDownCounter
	exitTotal     metric.Int64Counter
}

// NewSpawnMetrics creates spawn instruments on the given meter.
func NewSpawnMetrics(meter metric.Meter) (*SpawnMetrics, error) {
	spawnTotal, err := meter.Int64Counter("process.spawn.total",
		metric.WithDescription("Spawn attempts by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.spawn.total counter: %w", err)
	}

	spawnDuration, err := meter.Float64Histogram("process.spawn.duration",
		metric.WithDescription("Time from spawn request to child creation in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.spawn.duration histogram: %w", err)
	}

	live, err := meter.Int64UpDownCounter("process.live",
		metric.WithDescription("Children spawned and not yet reaped"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.live gauge: %w", err)
	}

	exitTotal, err := meter.Int64Counter("process.exit.total",
		metric.WithDescription("Reaped children by exit code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating process.exit.total counter: %w", err)
	}

	return &SpawnMetrics{
		spawnTotal:    spawnTotal,
		spawnDuration: spawnDuration,
		live:          live,
		exitTotal:     exitTotal,
	}, nil
}

// RecordSpawn records one spawn attempt. A successful spawn also raises the
// live count.
func (m *SpawnMetrics) RecordSpawn(ctx context.Context, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.spawnTotal.Add(ctx, 1, attrs)
	m.spawnDuration.Record(ctx, duration.Seconds(), attrs)
	if outcome == OutcomeOK {
		m.live.Add(ctx, 1)
	}
}

// RecordExit records a reaped child and lowers the live count.
func (m *SpawnMetrics) RecordExit(ctx context.Context, exitCode int) {
	if m == nil {
		return
	}
	m.live.Add(ctx, -1)
	m.exitTotal.Add(ctx, 1, metric.WithAttributes(attribute.Int("exit_code", exitCode)))
}
