package reconciler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var reconcileTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "coursepay",
	Name:      "reconcile_total",
	Help:      "Payment event reconciliations, partitioned by provider and outcome.",
}, []string{"provider", "outcome"})

var grantFailures = promauto.NewCounter(prometheus.CounterOpts{
	Subsystem: "coursepay",
	Name:      "grant_failures_total",
	Help:      "Purchases approved whose course grant failed and needs retry.",
})
