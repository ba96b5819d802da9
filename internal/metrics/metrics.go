package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SalesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "salepoint_sales_created_total",
		Help: "Sales committed successfully.",
	})

	SaleCreateFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "salepoint_sale_create_failures_total",
		Help: "Sale creations that failed, by reason.",
	}, []string{"reason"})

	ProjectionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "salepoint_profile_projection_failures_total",
		Help: "Customer profile projections that failed inline and were queued for retry.",
	})
)
