package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// OrdersSubmittedTotal counts order submissions by outcome.
	OrdersSubmittedTotal *prometheus.CounterVec
	// OrdersValidatedTotal counts orders moved through the approval workflow.
	OrdersValidatedTotal *prometheus.CounterVec
	// RecalcTotal counts draft recalculation passes.
	RecalcTotal prometheus.Counter
	// CatalogRefreshTotal counts catalog fetches from the spreadsheet gateway.
	CatalogRefreshTotal *prometheus.CounterVec
	// CatalogRejectedRows counts catalog rows dropped by schema validation.
	CatalogRejectedRows prometheus.Counter
	// ExportJobsTotal counts document export jobs by outcome.
	ExportJobsTotal *prometheus.CounterVec
	// StoreRequestLatency records order-store call latency in milliseconds.
	StoreRequestLatency *prometheus.HistogramVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		OrdersSubmittedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_submitted_total",
			Help:      "Count of order submission outcomes.",
		}, []string{"result"})
		OrdersValidatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_validated_total",
			Help:      "Count of order validation workflow outcomes.",
		}, []string{"result"})
		RecalcTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_recalc_total",
			Help:      "Number of order recalculation passes executed.",
		})
		CatalogRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_refresh_total",
			Help:      "Count of catalog refreshes from the spreadsheet gateway.",
		}, []string{"category", "result"})
		CatalogRejectedRows = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_rejected_rows_total",
			Help:      "Number of catalog rows rejected by schema validation.",
		})
		ExportJobsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_jobs_total",
			Help:      "Count of order document export outcomes.",
		}, []string{"result"})
		StoreRequestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_store_duration_ms",
			Help:      "Latency of order store operations in milliseconds.",
			Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"op", "result"})

		collectors := []prometheus.Collector{
			OrdersSubmittedTotal,
			OrdersValidatedTotal,
			RecalcTotal,
			CatalogRefreshTotal,
			CatalogRejectedRows,
			ExportJobsTotal,
			StoreRequestLatency,
		}
		for _, c := range collectors {
			if err := reg.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
					continue
				}
				panic(fmt.Errorf("register domain metric: %w", err))
			}
		}
	})
}
