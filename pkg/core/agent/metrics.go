package agent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	turnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "halcyon",
			Subsystem: "agent",
			Name:      "turns_total",
			Help:      "Number of processed turns by outcome.",
		},
		[]string{"status"},
	)

	providerInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "halcyon",
			Subsystem: "agent",
			Name:      "provider_invocations_total",
			Help:      "Number of successful provider invocations by model.",
		},
		[]string{"model"},
	)

	toolDispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "halcyon",
			Subsystem: "agent",
			Name:      "tool_dispatches_total",
			Help:      "Number of tool dispatches by tool and outcome.",
		},
		[]string{"tool", "status"},
	)
)
