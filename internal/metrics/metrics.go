// Package metrics holds the Prometheus collectors shared by both surfaces.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"image-prompt-builder/internal/promptbuilder"
)

const namespace = "image_prompt_builder"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "route"},
	)

	PromptsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "prompt",
			Name:      "generated_total",
			Help:      "Prompts assembled, by surface",
		},
		[]string{"surface"},
	)

	CustomChoices = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "prompt",
			Name:      "custom_choices_total",
			Help:      "Fields resolved from custom text, by field",
		},
		[]string{"field"},
	)

	Exports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "prompt",
			Name:      "exports_total",
			Help:      "JSON documents exported, by surface",
		},
		[]string{"surface"},
	)
)

const (
	SurfaceWeb = "web"
	SurfaceAPI = "api"
	SurfaceBot = "bot"
)

// ObservePrompt counts one assembled prompt and its custom fields.
func ObservePrompt(surface string, sel promptbuilder.Selection) {
	PromptsGenerated.WithLabelValues(surface).Inc()
	for _, f := range promptbuilder.AllFields {
		if sel.Get(f).IsCustom() {
			CustomChoices.WithLabelValues(f.Key()).Inc()
		}
	}
}
