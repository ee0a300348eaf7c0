package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns an HTTP handler exposing the metrics in the standard
// Prometheus exposition format. Mount it at "/metrics".
func (lm *LoaderMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(
		lm.registry,
		promhttp.HandlerOpts{
			EnableOpenMetrics: true,
			ErrorHandling:     promhttp.ContinueOnError,
		},
	)
}
