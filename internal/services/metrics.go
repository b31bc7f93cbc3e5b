package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the analysis counters exposed on /metrics.
type Metrics struct {
	AnalysesTotal         *prometheus.CounterVec
	RecordsProcessedTotal prometheus.Counter
	OutliersDetectedTotal prometheus.Counter
}

// NewMetrics registers the analysis metrics on the given registerer.
// A nil registerer uses the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shoppulse",
			Name:      "analyses_total",
			Help:      "Completed analyses by detection method.",
		}, []string{"method"}),
		RecordsProcessedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "shoppulse",
			Name:      "records_processed_total",
			Help:      "Input records processed across all analyses.",
		}),
		OutliersDetectedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "shoppulse",
			Name:      "outliers_detected_total",
			Help:      "Records flagged as price outliers.",
		}),
	}
}
