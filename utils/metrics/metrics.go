package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "citymap_http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"method", "status"})
	LayerReloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "citymap_layer_reloads_total",
		Help: "Layer classification runs by outcome",
	}, []string{"status"})
	LayerFeatures = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "citymap_layer_features",
		Help: "Features in the current snapshot per category",
	}, []string{"category"})
	SessionsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "citymap_sessions_created_total",
		Help: "Map sessions created",
	})
	VisibilityTogglesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "citymap_visibility_toggles_total",
		Help: "Layer visibility toggles per category",
	}, []string{"category"})
	HoverEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "citymap_hover_events_total",
		Help: "Hover events by result (hit or miss)",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(HTTPRequestDurationMs)
	prometheus.MustRegister(LayerReloadsTotal)
	prometheus.MustRegister(LayerFeatures)
	prometheus.MustRegister(SessionsCreatedTotal)
	prometheus.MustRegister(VisibilityTogglesTotal)
	prometheus.MustRegister(HoverEventsTotal)
}

// Handler exposes the registered metrics for scraping.
func Handler() http.Handler { return promhttp.Handler() }
