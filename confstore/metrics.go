package confstore

import (
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	ReloadCounter       = "config_reload_count"
	ParseFailureCounter = "config_parse_failure_count"
)

// Metrics holds the counters a Store can be instrumented with.  The fields
// are assignable directly to the corresponding Options fields.
type Metrics struct {
	Reloads       *kitprometheus.Counter
	ParseFailures *kitprometheus.Counter
}

// NewMetrics constructs and registers the store counters against the supplied
// registerer.  Passing nil registers against prometheus.DefaultRegisterer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	var (
		reloads = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: ReloadCounter,
				Help: "the count of successful configuration hot reloads",
			},
			[]string{},
		)

		parseFailures = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: ParseFailureCounter,
				Help: "the count of configuration hot reloads that failed to read or parse",
			},
			[]string{},
		)
	)

	registerer.MustRegister(reloads, parseFailures)

	return &Metrics{
		Reloads:       kitprometheus.NewCounter(reloads),
		ParseFailures: kitprometheus.NewCounter(parseFailures),
	}
}
