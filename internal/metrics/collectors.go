package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"smart-pantry/internal/shared"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Collectors are the Prometheus series exported on /metrics.
type Collectors struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
	Tokens   *prometheus.CounterVec
}

// NewCollectors creates the collectors and registers them on reg.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smart_pantry",
			Name:      "collaborator_requests_total",
			Help:      "AI collaborator calls by agent and outcome.",
		}, []string{"agent", "outcome"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "smart_pantry",
			Name:      "collaborator_latency_seconds",
			Help:      "AI collaborator call latency.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"agent"}),
		Tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smart_pantry",
			Name:      "collaborator_tokens_total",
			Help:      "Tokens consumed by AI collaborator calls.",
		}, []string{"agent", "kind"}),
	}
	reg.MustRegister(c.Requests, c.Latency, c.Tokens)
	return c
}

// Observe records one collaborator call.
func (c *Collectors) Observe(meta shared.AgentMeta, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	c.Requests.WithLabelValues(meta.AgentName, outcome).Inc()
	c.Latency.WithLabelValues(meta.AgentName).Observe(meta.Latency.Seconds())
	c.Tokens.WithLabelValues(meta.AgentName, "prompt").Add(float64(meta.Usage.PromptTokens))
	c.Tokens.WithLabelValues(meta.AgentName, "completion").Add(float64(meta.Usage.CompletionTokens))
}
