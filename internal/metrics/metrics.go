// Package metrics provides Prometheus metrics for the rendering pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "r3x"
)

// Render outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomePanic    = "panic"
	OutcomeOversize = "oversize"
)

// Fallback reasons.
const (
	ReasonNoRenderer = "no_renderer"
	ReasonError      = "renderer_error"
)

// Render metrics track renderer invocations.
var (
	// RenderTotal is the total number of render calls by renderer and outcome.
	RenderTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "render_total",
		Help:      "Total number of render calls",
	}, []string{"renderer", "outcome"})

	// RenderDuration is a histogram of render duration in seconds.
	RenderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "render_duration_seconds",
		Help:      "Duration of render calls in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~0.8s
	}, []string{"renderer"})

	// RenderedBytesTotal is the total size of rendered output by renderer.
	RenderedBytesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rendered_bytes_total",
		Help:      "Total bytes of rendered output",
	}, []string{"renderer"})
)

// Guard metrics track degraded rendering paths.
var (
	// FallbackTotal is the total number of fallback renderings by reason.
	FallbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "render_fallback_total",
		Help:      "Total number of fallback renderings",
	}, []string{"reason"})

	// OversizeTotal is the total number of inputs refused by size ceilings.
	OversizeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "render_oversize_total",
		Help:      "Total number of inputs over a renderer size ceiling",
	}, []string{"renderer"})
)

// Detection metrics track content-type detection.
var (
	// DetectTotal is the total number of detections by tag.
	DetectTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "detect_total",
		Help:      "Total number of content-type detections",
	}, []string{"tag"})
)
