package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// StorefrontMetrics records order and notification outcomes.
type StorefrontMetrics struct {
	ordersPlaced         *Counter
	unitsSold            *Counter
	orderAmount          *Histogram
	notificationFailures *Counter
}

// NewStorefrontMetrics registers the storefront instruments on meter.
func NewStorefrontMetrics(meter metric.Meter) (*StorefrontMetrics, error) {
	ordersPlaced, err := NewCounter(meter, "shop_orders_placed_total", "Orders stored", "{orders}")
	if err != nil {
		return nil, err
	}
	unitsSold, err := NewCounter(meter, "shop_order_units_total", "Units across stored orders", "{units}")
	if err != nil {
		return nil, err
	}
	orderAmount, err := NewHistogram(meter, HistogramOpts{
		Name:        "shop_order_amount",
		Description: "Order total including IVA",
		Unit:        "EUR",
		Boundaries:  []float64{10, 25, 50, 75, 100, 150, 250, 500},
	})
	if err != nil {
		return nil, err
	}
	failures, err := NewCounter(meter, "shop_notification_failures_total", "Order confirmations that could not be sent", "{emails}")
	if err != nil {
		return nil, err
	}
	return &StorefrontMetrics{
		ordersPlaced:         ordersPlaced,
		unitsSold:            unitsSold,
		orderAmount:          orderAmount,
		notificationFailures: failures,
	}, nil
}

// RecordOrderPlaced counts a stored order with its total and unit count.
func (m *StorefrontMetrics) RecordOrderPlaced(ctx context.Context, total decimal.Decimal, units int) {
	m.ordersPlaced.Inc(ctx)
	m.unitsSold.Add(ctx, int64(units))
	m.orderAmount.Record(ctx, total.InexactFloat64())
}

// RecordNotificationFailure counts an order confirmation that was not sent.
func (m *StorefrontMetrics) RecordNotificationFailure(ctx context.Context) {
	m.notificationFailures.Inc(ctx)
}
