package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ResourceRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ipaps", Name: "resource_requests_total", Help: "Requests handled, by resource and operation."},
		[]string{"resource", "operation"},
	)
	ResourceErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ipaps", Name: "resource_errors_total", Help: "Failed requests, by resource, operation and error kind."},
		[]string{"resource", "operation", "kind"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(ResourceRequests)
	reg.MustRegister(ResourceErrors)
}
