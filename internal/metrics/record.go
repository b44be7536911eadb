package metrics

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// RecordRender records a renderer invocation.
func RecordRender(renderer, outcome string, duration time.Duration, outputBytes int) {
	RenderTotal.WithLabelValues(renderer, outcome).Inc()
	RenderDuration.WithLabelValues(renderer).Observe(duration.Seconds())
	if outputBytes > 0 {
		RenderedBytesTotal.WithLabelValues(renderer).Add(float64(outputBytes))
	}
}

// RecordFallback records a fallback rendering.
func RecordFallback(reason string) {
	FallbackTotal.WithLabelValues(reason).Inc()
}

// RecordOversize records an input refused by a size ceiling.
func RecordOversize(renderer string) {
	OversizeTotal.WithLabelValues(renderer).Inc()
	RenderTotal.WithLabelValues(renderer, OutcomeOversize).Inc()
}

// RecordDetect records a content-type detection.
func RecordDetect(tag string) {
	DetectTotal.WithLabelValues(tag).Inc()
}

// WriteText writes this package's metrics in the Prometheus text format.
func WriteText(w io.Writer) error {
	return WriteTextFrom(prometheus.DefaultGatherer, w)
}

// WriteTextFrom writes the gatherer's r3x metrics in the Prometheus text
// format.
func WriteTextFrom(g prometheus.Gatherer, w io.Writer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics; %w", err)
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), namespace+"_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metric %s; %w", mf.GetName(), err)
		}
	}
	return nil
}
