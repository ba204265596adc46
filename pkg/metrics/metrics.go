package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HistogramBuckets are request latency bounds in milliseconds. Entitlement
// reads are served from cache, so resolution is concentrated below 250ms.
var HistogramBuckets = []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

// Metric describes one collector. Type selects the collector kind and is one
// of counter, counter_vec, histogram_vec or summary_vec.
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

// NewMetric builds the collector for m. It returns nil for an unknown Type.
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	switch m.Type {
	case "counter":
		return prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: subsystem, Name: m.Name, Help: m.Description,
		})
	case "counter_vec":
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: subsystem, Name: m.Name, Help: m.Description,
		}, m.Args)
	case "histogram_vec":
		return prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Subsystem: subsystem, Name: m.Name, Help: m.Description, Buckets: HistogramBuckets,
		}, m.Args)
	case "summary_vec":
		return prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Subsystem: subsystem, Name: m.Name, Help: m.Description,
		}, m.Args)
	}
	return nil
}

// RefererKey is the header whose value fills the "ref" label of request metrics.
const RefererKey = "X-Referer"
