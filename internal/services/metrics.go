package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "giftbot/services"

// instruments - счетчики жеребьёвок и доставок
type instruments struct {
	draws         metric.Int64Counter
	registrations metric.Int64Counter
	deliveries    metric.Int64Counter
}

// newInstruments берет глобальный провайдер; до его настройки счетчики no-op
func newInstruments() *instruments {
	return newInstrumentsFrom(otel.GetMeterProvider())
}

func newInstrumentsFrom(mp metric.MeterProvider) *instruments {
	meter := mp.Meter(meterName)
	draws, _ := meter.Int64Counter("giftbot.draws",
		metric.WithDescription("Completed draws"))
	registrations, _ := meter.Int64Counter("giftbot.registrations",
		metric.WithDescription("Participant registrations"))
	deliveries, _ := meter.Int64Counter("giftbot.deliveries",
		metric.WithDescription("Outbound messages by type and outcome"))
	return &instruments{draws: draws, registrations: registrations, deliveries: deliveries}
}

func (m *instruments) drawCompleted(ctx context.Context, fallback bool) {
	m.draws.Add(ctx, 1, metric.WithAttributes(attribute.Bool("fallback", fallback)))
}

func (m *instruments) registered(ctx context.Context, status string) {
	m.registrations.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

func (m *instruments) delivered(ctx context.Context, kind string, ok bool) {
	m.deliveries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", kind),
		attribute.Bool("ok", ok),
	))
}
