package infra

import (
	"context"

	"translate-gateway/middleware/ratelimit/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusStatsStore expõe as decisões como contador rotulado por rota e resultado.
// A chave do cliente nunca vira rótulo (cardinalidade).
type PrometheusStatsStore struct {
	decisions *prometheus.CounterVec
}

func NewPrometheusStatsStore(reg prometheus.Registerer) (*PrometheusStatsStore, error) {
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "translate_gateway",
		Subsystem: "ratelimit",
		Name:      "decisions_total",
		Help:      "Rate limit decisions by route and outcome.",
	}, []string{"route", "outcome"})

	if reg != nil {
		if err := reg.Register(decisions); err != nil {
			return nil, err
		}
	}
	return &PrometheusStatsStore{decisions: decisions}, nil
}

func (s *PrometheusStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	route := ev.Route()
	if route == "" {
		route = "in-process"
	}
	s.decisions.WithLabelValues(route, ev.Outcome()).Inc()
	return nil
}

// Collector permite inspecionar o contador em testes.
func (s *PrometheusStatsStore) Collector() *prometheus.CounterVec { return s.decisions }
