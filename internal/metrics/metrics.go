package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	searchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotelsearch",
			Name:      "search_total",
			Help:      "Count of searches by trigger and outcome.",
		},
		[]string{"trigger", "outcome"},
	)

	searchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "hotelsearch",
			Name:      "search_duration_seconds",
			Help:      "Time spent waiting for the search endpoint.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2, 5},
		},
		[]string{"outcome"},
	)

	searchCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotelsearch",
			Name:      "search_cache_total",
			Help:      "Search response cache lookups by tier and result.",
		},
		[]string{"tier", "result"},
	)

	modeSwitch = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotelsearch",
			Name:      "mode_switch_total",
			Help:      "Count of booking mode switches by target mode.",
		},
		[]string{"mode"},
	)

	priceEdit = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotelsearch",
			Name:      "price_edit_total",
			Help:      "Count of price endpoint edits by result.",
		},
		[]string{"result"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotelsearch",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(searchTotal, searchDuration, searchCache, modeSwitch, priceEdit, httpRequests)
	})
}

func IncSearch(trigger, outcome string) {
	searchTotal.WithLabelValues(trigger, outcome).Inc()
}

func ObserveSearchDuration(outcome string, seconds float64) {
	searchDuration.WithLabelValues(outcome).Observe(seconds)
}

func IncCache(tier, result string) {
	searchCache.WithLabelValues(tier, result).Inc()
}

func IncModeSwitch(mode string) {
	modeSwitch.WithLabelValues(mode).Inc()
}

func IncPriceEdit(result string) {
	priceEdit.WithLabelValues(result).Inc()
}

func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
