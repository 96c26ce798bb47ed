package services

import "github.com/prometheus/client_golang/prometheus"

var (
	recommendationsServedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommendations_served_total",
		Help: "Recommendations served, labeled by ranking strategy",
	}, []string{"strategy"})

	recommendationCacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommendation_cache_requests_total",
		Help: "Recommendation cache lookups by result",
	}, []string{"result"})

	reviewsProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flashcard_reviews_total",
		Help: "Flashcard reviews processed, labeled by outcome",
	}, []string{"outcome"})
)

func init() {
	for _, collector := range []prometheus.Collector{
		recommendationsServedTotal,
		recommendationCacheHits,
		reviewsProcessedTotal,
	} {
		if err := prometheus.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
	}
}
