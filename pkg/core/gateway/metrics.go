package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var providerFallbacks = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "halcyon",
		Subsystem: "gateway",
		Name:      "provider_fallbacks_total",
		Help:      "Number of invocations rerouted to a fallback provider.",
	},
	[]string{"from", "to"},
)
