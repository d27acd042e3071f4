package metrics

import "github.com/prometheus/client_golang/prometheus"

// ConversationMetrics exposes counters/histograms for the turn-handling flow.
type ConversationMetrics struct {
	turnsTotal         *prometheus.CounterVec
	functionCallsTotal *prometheus.CounterVec
	searchCacheTotal   *prometheus.CounterVec
	llmLatency         *prometheus.HistogramVec
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sahayak",
			Subsystem: "conversation",
			Name:      "turns_total",
			Help:      "Processed conversational turns by outcome",
		}, []string{"outcome"}),
		functionCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sahayak",
			Subsystem: "conversation",
			Name:      "function_calls_total",
			Help:      "Dispatched backend function calls",
		}, []string{"function", "status"}),
		searchCacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sahayak",
			Subsystem: "conversation",
			Name:      "search_cache_total",
			Help:      "Nearby-search cache lookups",
		}, []string{"result"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sahayak",
			Subsystem: "conversation",
			Name:      "llm_latency_seconds",
			Help:      "Latency of model calls by phase",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.functionCallsTotal, m.searchCacheTotal, m.llmLatency)
	return m
}

func (m *ConversationMetrics) ObserveTurn(outcome string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(outcome).Inc()
}

func (m *ConversationMetrics) ObserveFunctionCall(function, status string) {
	if m == nil {
		return
	}
	m.functionCallsTotal.WithLabelValues(function, status).Inc()
}

func (m *ConversationMetrics) ObserveSearchCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.searchCacheTotal.WithLabelValues(result).Inc()
}

func (m *ConversationMetrics) ObserveLLMLatency(phase string, seconds float64) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(phase).Observe(seconds)
}
