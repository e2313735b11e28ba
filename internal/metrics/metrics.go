package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CartMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "restaurant",
		Subsystem: "cart",
		Name:      "mutations_total",
		Help:      "Cart mutations accepted by the api.",
	}, []string{"operation"})

	CartCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "restaurant",
		Subsystem: "cart",
		Name:      "cache_lookups_total",
		Help:      "Cart cache lookups by result.",
	}, []string{"result"})

	OrdersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "restaurant",
		Subsystem: "order",
		Name:      "created_total",
		Help:      "Orders created by fulfillment type and source.",
	}, []string{"order_type", "source"})

	OrderStatusUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "restaurant",
		Subsystem: "order",
		Name:      "status_updates_total",
		Help:      "Accepted order status transitions by target status.",
	}, []string{"status"})
)
