package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcomes
const (
	OutcomeFound       = "found"
	OutcomeNoMatch     = "no_match"
	OutcomeInvalid     = "invalid_query"
	OutcomeUnavailable = "store_unavailable"
)

// Collector - Prometheus-метрики поиска, кеша диапазонов и воркера.
// A nil *Collector is valid and records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	Searches        *prometheus.CounterVec
	SearchDuration  *prometheus.HistogramVec
	RangesPerSearch prometheus.Histogram
	Candidates      prometheus.Histogram
	CacheRequests   *prometheus.CounterVec
	WorkerMessages  *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
}

// NewCollector registers metrics against reg, defaulting to the global registry when nil.
func NewCollector(reg prometheus.Registerer, namespace string) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	searches, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "searches_total",
		Help:      "Proximity searches by operation and outcome.",
	}, []string{"operation", "outcome"}), "searches_total")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_duration_seconds",
		Help:      "Proximity search latency in seconds.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"operation"}), "search_duration_seconds")
	if err != nil {
		return nil, err
	}

	ranges, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_ranges",
		Help:      "Geohash ranges queried per search.",
		Buckets:   []float64{1, 2, 3, 4, 6, 9},
	}), "search_ranges")
	if err != nil {
		return nil, err
	}

	candidates, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_candidates",
		Help:      "Distinct points returned by the store per search, before filtering.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	}), "search_candidates")
	if err != nil {
		return nil, err
	}

	cache, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "range_cache_requests_total",
		Help:      "Range cache lookups by result (hit, miss, error).",
	}, []string{"result"}), "range_cache_requests_total")
	if err != nil {
		return nil, err
	}

	worker, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "worker_messages_total",
		Help:      "Stream messages handled by the search worker, by status.",
	}, []string{"status"}), "worker_messages_total")
	if err != nil {
		return nil, err
	}

	httpRequests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"}), "http_requests_total")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:        gatherer,
		Searches:        searches,
		SearchDuration:  duration,
		RangesPerSearch: ranges,
		Candidates:      candidates,
		CacheRequests:   cache,
		WorkerMessages:  worker,
		HTTPRequests:    httpRequests,
	}, nil
}

// ObserveSearch records one finished search.
func (c *Collector) ObserveSearch(operation, outcome string, seconds float64) {
	if c == nil {
		return
	}
	c.Searches.WithLabelValues(operation, outcome).Inc()
	c.SearchDuration.WithLabelValues(operation).Observe(seconds)
}

// ObserveFanOut records how many ranges were queried and how many distinct points came back.
func (c *Collector) ObserveFanOut(ranges, candidates int) {
	if c == nil {
		return
	}
	c.RangesPerSearch.Observe(float64(ranges))
	c.Candidates.Observe(float64(candidates))
}

func (c *Collector) CacheResult(result string) {
	if c == nil {
		return
	}
	c.CacheRequests.WithLabelValues(result).Inc()
}

func (c *Collector) WorkerMessage(status string) {
	if c == nil {
		return
	}
	c.WorkerMessages.WithLabelValues(status).Inc()
}

func (c *Collector) HTTPRequest(method, route, status string) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, status).Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	if c == nil || c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}
