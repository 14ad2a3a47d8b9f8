package hal

import (
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	UnresolvableRelationCounter = "hal_unresolvable_relation_count"
)

// Metrics holds the counters a resource tree can be instrumented with.
type Metrics struct {
	Unresolvable *kitprometheus.Counter
}

// NewMetrics constructs and registers the package counters against the
// supplied registerer.  Passing nil registers against prometheus.DefaultRegisterer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	unresolvable := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: UnresolvableRelationCounter,
			Help: "the count of link candidates that could not be resolved to a relation and href",
		},
		[]string{},
	)

	registerer.MustRegister(unresolvable)

	return &Metrics{
		Unresolvable: kitprometheus.NewCounter(unresolvable),
	}
}
