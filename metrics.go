package domfinder

import "github.com/prometheus/client_golang/prometheus"

func setupMetrics() (
	summaryVec *prometheus.SummaryVec,
	totalCounter prometheus.Counter,
	counterVecOutcome *prometheus.CounterVec,
) {
	const prometheusLabelSchema = "schema"
	const prometheusLabelOutcome = "outcome"

	summaryVec = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "domfinder_extract_durations_seconds",
			Help:       "extraction duration from document parse to assembled value",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{prometheusLabelSchema},
	)

	totalCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "domfinder_extract_counter_total",
		Help: "number of extractions since start of the service",
	})

	counterVecOutcome = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "domfinder_extract_outcome_total",
		Help: "extraction outcomes for the running service",
	}, []string{prometheusLabelSchema, prometheusLabelOutcome})

	prometheus.MustRegister(
		summaryVec,
		totalCounter,
		counterVecOutcome,
	)

	return
}
