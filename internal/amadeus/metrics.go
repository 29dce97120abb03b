package amadeus

import "github.com/prometheus/client_golang/prometheus"

var (
	// providerReqs counts outbound provider calls by endpoint and outcome.
	// Outcome is "ok", "empty" (2xx with zero offers), or "error".
	providerReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "amadeus_requests_total",
			Help: "Total number of outbound Amadeus API calls.",
		},
		[]string{"endpoint", "outcome"},
	)

	// flexAttempts counts flexible-date retry attempts after an empty or
	// failed exact-date search.
	flexAttempts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "amadeus_flex_attempts_total",
			Help: "Total number of flexible-date retry searches.",
		},
	)
)

func init() {
	prometheus.MustRegister(providerReqs, flexAttempts)
}
