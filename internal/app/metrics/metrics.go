// Package metrics provides Prometheus metrics for validation runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "jwt_contract_validator"

// Reasons a record produced no result.
const (
	SkipNoContext   = "no_context"
	SkipNoBody      = "no_body"
	SkipUnresolved  = "unresolved"
	SkipUndecodable = "undecodable"
	SkipEmpty       = "empty_payload"
	SkipNoSchema    = "no_schema"
)

type Metrics struct {
	LogsProcessed  prometheus.Counter
	RecordsTotal   prometheus.Counter
	RecordsSkipped *prometheus.CounterVec
	ResultsTotal   *prometheus.CounterVec
}

// DefaultMetrics is registered with the default Prometheus registry.
var DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		LogsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logs_processed_total",
			Help:      "Total number of interaction logs validated",
		}),
		RecordsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Total number of interaction records read",
		}),
		RecordsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_skipped_total",
			Help:      "Record bodies skipped without a result, by reason",
		}, []string{"reason"}),
		ResultsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "results_total",
			Help:      "Validation results emitted, by body direction and status",
		}, []string{"direction", "status"}),
	}
}
