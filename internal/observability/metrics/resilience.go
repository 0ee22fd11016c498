package metrics

import "github.com/prometheus/client_golang/prometheus"

// resilienceCollectors satisfies resilience.Observer for both processes.
type resilienceCollectors struct {
	service      string
	retries      *prometheus.CounterVec
	breakerState *prometheus.GaugeVec
}

func newResilienceCollectors(service string) *resilienceCollectors {
	return &resilienceCollectors{
		service: service,
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "resilience",
				Name:      "retries_total",
				Help:      "Retried calls to external dependencies, by operation.",
			},
			[]string{"service", "operation"},
		),
		breakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "resilience",
				Name:      "breaker_open",
				Help:      "1 while the operation's circuit breaker is open or half-open.",
			},
			[]string{"service", "operation"},
		),
	}
}

func (c *resilienceCollectors) register(registry *prometheus.Registry) {
	registry.MustRegister(c.retries, c.breakerState)
}

func (c *resilienceCollectors) OnRetry(operation string, _ int) {
	c.retries.WithLabelValues(c.service, operation).Inc()
}

func (c *resilienceCollectors) OnBreakerStateChange(operation string, to string) {
	value := 1.0
	if to == "closed" {
		value = 0
	}
	c.breakerState.WithLabelValues(c.service, operation).Set(value)
}
