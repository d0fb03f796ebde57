package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		activationOutcomesTotal,
		offerMutationsTotal,
	)
}

var (
	activationOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activation_outcomes_total",
			Help: "Activation page resolutions by outcome.",
		},
		[]string{"outcome"}, // 'redirect', 'rendered'
	)

	offerMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offer_mutations_total",
			Help: "Catalog writes issued through the admin API.",
		},
		[]string{"op"}, // 'create', 'update', 'delete'
	)
)

func IncActivationOutcome(outcome string) {
	activationOutcomesTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncOfferMutation(op string) {
	offerMutationsTotal.WithLabelValues(norm(op)).Inc()
}
