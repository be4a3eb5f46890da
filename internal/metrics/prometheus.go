// Package metrics exposes Prometheus metrics for query ingestion. The
// storage engine this core was carved out of hand-rolled its own
// OpenMetrics text exporter; this core instead wires the real
// prometheus/client_golang registry, since a production server would
// register it on its own /metrics handler rather than reimplementing
// one.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kartikbazzad/queryhost/internal/dberrors"
)

// Ingestion collects metrics for the query ingestion core: how many
// queries were parsed, how many failed and at what error category, and
// how large the parsed term trees were.
type Ingestion struct {
	ParsesTotal      *prometheus.CounterVec
	ParseErrorsTotal *prometheus.CounterVec
	TermsPerQuery    prometheus.Histogram
	OutstandingGauge *prometheus.GaugeVec
}

// NewIngestion creates and registers ingestion metrics against reg.
// Pass prometheus.NewRegistry() in tests to avoid colliding with the
// global default registry.
func NewIngestion(reg prometheus.Registerer) *Ingestion {
	m := &Ingestion{
		ParsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queryhost_parses_total",
			Help: "Total number of query envelopes parsed, by kind.",
		}, []string{"kind"}),
		ParseErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "queryhost_parse_errors_total",
			Help: "Total number of parse failures, by error category.",
		}, []string{"category"}),
		TermsPerQuery: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "queryhost_terms_per_query",
			Help:    "Number of terms allocated in a query's arena.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		OutstandingGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "queryhost_outstanding_query_ids",
			Help: "Outstanding (unreleased) query ids per connection registry.",
		}, []string{"connection"}),
	}

	reg.MustRegister(m.ParsesTotal, m.ParseErrorsTotal, m.TermsPerQuery, m.OutstandingGauge)
	return m
}

// RecordParse records a successfully parsed query of the given kind.
func (m *Ingestion) RecordParse(kind string) {
	m.ParsesTotal.WithLabelValues(kind).Inc()
}

// RecordParseError records a parse failure classified by category.
func (m *Ingestion) RecordParseError(category dberrors.ErrorCategory) {
	m.ParseErrorsTotal.WithLabelValues(categoryString(category)).Inc()
}

// RecordTermCount records how many terms a single query's arena holds.
func (m *Ingestion) RecordTermCount(n int) {
	m.TermsPerQuery.Observe(float64(n))
}

// SetOutstanding publishes the current outstanding-id count for a
// named connection.
func (m *Ingestion) SetOutstanding(connection string, count int) {
	m.OutstandingGauge.WithLabelValues(connection).Set(float64(count))
}

func categoryString(category dberrors.ErrorCategory) string {
	switch category {
	case dberrors.ErrorTransient:
		return "transient"
	case dberrors.ErrorPermanent:
		return "permanent"
	case dberrors.ErrorValidation:
		return "validation"
	default:
		return "unknown"
	}
}
