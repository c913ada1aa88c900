package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var slugConflicts = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "slugshare_slug_conflicts_total",
		Help: "Slug claims rejected because another record holds the slug.",
	},
	// source is "precheck" or "constraint"
	[]string{"op", "source"},
)
