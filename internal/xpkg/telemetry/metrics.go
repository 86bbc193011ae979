package telemetry

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type Metrics struct {
	OrdersPlaced         metric.Int64Counter
	StockRejections      metric.Int64Counter
	OrdersArchived       metric.Int64Counter
	NotificationsDropped metric.Int64Counter
	NotificationsSent    metric.Int64Counter
	OrderValue           metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	placed, err := meter.Int64Counter("orders_placed_total",
		metric.WithDescription("Order placement attempts by outcome"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	rejections, err := meter.Int64Counter("stock_rejections_total",
		metric.WithDescription("Placements rejected for missing or insufficient stock"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	archived, err := meter.Int64Counter("orders_archived_total",
		metric.WithDescription("Orders moved to history by terminal status"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	dropped, err := meter.Int64Counter("notifications_dropped_total",
		metric.WithDescription("Notifications that could not be delivered to a sink or observer"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	sent, err := meter.Int64Counter("notifications_sent_total",
		metric.WithDescription("Notifications handed to a sink"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}

	value, err := meter.Float64Histogram("order_value",
		metric.WithDescription("Total price of placed orders"),
		metric.WithExplicitBucketBoundaries(50, 100, 200, 500, 1000, 2000),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		OrdersPlaced:         placed,
		StockRejections:      rejections,
		OrdersArchived:       archived,
		NotificationsDropped: dropped,
		NotificationsSent:    sent,
		OrderValue:           value,
	}, nil
}

// NopMetrics records nothing; used by tests and tools that skip telemetry.
func NopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter(""))
	return m
}
