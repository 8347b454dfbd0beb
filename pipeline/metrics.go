package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	datasetsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvester_datasets_created_total",
		Help: "Datasets created in the target catalog.",
	}, []string{"source"})

	datasetsUpdated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvester_datasets_updated_total",
		Help: "Datasets updated in the target catalog.",
	}, []string{"source"})

	datasetsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvester_datasets_rejected_total",
		Help: "Source records rejected during transformation or validation.",
	}, []string{"source"})

	publishErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "harvester_publish_errors_total",
		Help: "Errors talking to the target catalog.",
	}, []string{"source"})
)
