// Package telemetry настраивает глобальный MeterProvider OpenTelemetry.
// Без коллектора счетчики сервисов остаются no-op.
package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const serviceName = "giftbot"

// Config - параметры экспорта метрик
type Config struct {
	Enabled        bool
	ExporterURL    string
	Interval       time.Duration
	ServiceVersion string
}

// Shutdown сбрасывает накопленные метрики и останавливает экспорт
type Shutdown func(ctx context.Context) error

// Setup регистрирует MeterProvider с OTLP gRPC экспортером
func Setup(ctx context.Context, cfg Config, log *slog.Logger) (Shutdown, error) {
	if !cfg.Enabled || cfg.ExporterURL == "" {
		log.Info("telemetry disabled or no exporter URL provided")
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.ExporterURL),
		otlpmetricgrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	mp := NewMeterProvider(sdkmetric.NewPeriodicReader(exporter,
		sdkmetric.WithInterval(cfg.Interval)), cfg.ServiceVersion)
	otel.SetMeterProvider(mp)

	log.Info("telemetry initialized", "endpoint", cfg.ExporterURL, "interval", cfg.Interval)
	return mp.Shutdown, nil
}

// NewMeterProvider создает провайдер с ресурсом сервиса и заданным reader
func NewMeterProvider(reader sdkmetric.Reader, version string) *sdkmetric.MeterProvider {
	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("service.version", version),
	)
	return sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
}
