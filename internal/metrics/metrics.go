// Package metrics registers the engine's Prometheus collectors. Counters are
// package-level so the runtime and the HTTP adapter share one registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Transition results used as label values.
const (
	ResultOK              = "ok"
	ResultInvalidSelector = "invalid_selector"
	ResultTerminal        = "terminal"
	ResultError           = "error"
)

var (
	// TransitionsTotal counts Start/Advance calls by outcome.
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "espalier",
		Name:      "transitions_total",
		Help:      "Number of flow transitions by result.",
	}, []string{"op", "result"})

	// SessionsStarted counts sessions created or reset via Start.
	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "espalier",
		Name:      "sessions_started_total",
		Help:      "Number of sessions created or reset.",
	})

	// ParseErrorsTotal counts rejected flow documents.
	ParseErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "espalier",
		Name:      "flow_parse_errors_total",
		Help:      "Number of flow documents rejected at parse/validate time.",
	})
)
