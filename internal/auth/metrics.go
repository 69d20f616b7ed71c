package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_token_resolutions_total",
		Help: "Bearer token resolutions by outcome",
	}, []string{"outcome"})

	flowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_flows_total",
		Help: "Login, signup and refresh attempts by result",
	}, []string{"flow", "result"})
)
