package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the order module: creation volume and
// segmentation latency, the one computation here that scans whole tables.
type Metrics struct {
	OrdersCreated        prometheus.Counter
	SegmentationDuration *prometheus.HistogramVec
}

// New creates a Metrics instance with all order module metrics registered.
func New() *Metrics {
	return &Metrics{
		OrdersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "olivecrm_orders_created_total",
			Help: "Total number of orders created through the API",
		}),
		SegmentationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "olivecrm_segmentation_duration_seconds",
			Help:    "Duration of customer segmentation computations by axis",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"axis"}),
	}
}

// ObserveSegmentation records the duration of one segmentation computation.
// Call with time.Now() captured at the start of the operation.
func (m *Metrics) ObserveSegmentation(axis string, start time.Time) {
	m.SegmentationDuration.WithLabelValues(axis).Observe(time.Since(start).Seconds())
}
