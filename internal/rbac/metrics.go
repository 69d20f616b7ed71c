package rbac

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const decisionMalformedPath = "malformed_path"

// decisionsTotal counts policy outcomes.
// Labels:
//   - decision: "allow", "unauthenticated", "forbidden", "malformed_path"
var decisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "authz_decisions_total",
		Help: "Total number of authorization policy decisions",
	},
	[]string{"decision"},
)
