package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ShipmentsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fulfillment_shipments_created_total",
		Help: "Total number of courier shipments successfully booked.",
	})

	OrderStatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_order_status_transitions_total",
		Help: "Total number of order status transitions by target status.",
	},
		[]string{"status"},
	)

	CourierGatewayErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_courier_gateway_errors_total",
		Help: "Total number of failed courier gateway calls by operation.",
	},
		[]string{"operation"},
	)

	StockRestoreFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fulfillment_stock_restore_failures_total",
		Help: "Total number of cancellations whose stock restoration needed manual reconciliation.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fulfillment_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	OrderCacheItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fulfillment_order_cache_items",
		Help: "Current number of items in the order cache.",
	})
)
